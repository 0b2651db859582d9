package types

// RECORD_TYPE_USERS is the record type name users register under in the
// recyclable registry and the name resolver registry.
const RECORD_TYPE_USERS = "users"

type User struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Email     string `json:"email" db:"email"`
	Avatar    string `json:"avatar" db:"avatar"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
	UpdatedAt int64  `json:"updated_at" db:"updated_at"`
	DeletedAt int64  `json:"deleted_at" db:"deleted_at"` // 0 表示未删除
}

func (u User) IsDeleted() bool {
	return u.DeletedAt != NOT_DELETE
}
