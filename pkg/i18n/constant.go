package i18n

var ALLOW_LANG = map[string]bool{
	"en":    true,
	"zh-CN": true,
}

const DEFAULT_LANG = "en"

const (
	ERROR_INTERNAL          = "error.internal"
	ERROR_NOT_FOUND         = "error.notfound"
	ERROR_INVALIDARGUMENT   = "error.invalidargument"
	ERROR_PERMISSION_DENIED = "error.permission.denied"
	ERROR_UNAUTHORIZED      = "error.unauthorized"
	ERROR_EXIST             = "error.exist"
	ERROR_FORBIDDEN         = "error.forbidden"
	ERROR_MORE_THAN_MAX     = "error.moreThanMax"

	ERROR_ALREADY_IN_BIN     = "error.recycle.already_in_bin"
	ERROR_DATA_LOSS          = "error.recycle.data_loss"
	ERROR_UNKNOWN_RESOURCE   = "error.recycle.unknown_resource"
	ERROR_SLOT_OCCUPIED      = "error.attach.slot_occupied"
	ERROR_AMBIGUOUS_LOCATION = "error.list.ambiguous_location"
)
