package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "filecab_"

const (
	TABLE_FILE          = TableName("file")
	TABLE_FILE_LINK     = TableName("file_link")
	TABLE_RECYCLE_BIN   = TableName("recycle_bin")
	TABLE_USER          = TableName("user")
	TABLE_CLEANUP_QUEUE = TableName("cleanup_queue")
)
