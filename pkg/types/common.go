package types

const (
	NO_PAGINATION = 0

	NOT_DELETE = 0
)

// RESOURCE_TYPE_FILES is the resource kind a recycle bin entry uses when the
// binned resource is a file itself rather than a record owning files.
const RESOURCE_TYPE_FILES = "files"

// RECORD_TYPE_UNCATEGORIZED is a virtual record type: files without any
// active link. It exists only in tree/list projections, never in storage.
const RECORD_TYPE_UNCATEGORIZED = "Uncategorized"

// Broadcast subjects for row change events.
const (
	SUBJECT_FILE        = "file"
	SUBJECT_FILE_LINK   = "file_link"
	SUBJECT_RECYCLE_BIN = "recycle_bin"
)

type RowEvent string

const (
	ROW_EVENT_CREATED RowEvent = "created"
	ROW_EVENT_UPDATED RowEvent = "updated"
	ROW_EVENT_DELETED RowEvent = "deleted"
)
