package domain

type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
)

func ParsePermission(s string) (Permission, bool) {
	switch Permission(s) {
	case PermissionRead:
		return PermissionRead, true
	case PermissionWrite:
		return PermissionWrite, true
	}
	return "", false
}

// Grant is the sharing relation attached to a note. A note holds at most
// one grant per grantee; sharing again overwrites the previous permission.
type Grant struct {
	NoteID     uint64     `json:"note_id"`
	GranteeID  string     `json:"grantee_id"`
	Permission Permission `json:"permission"`
}

type ShareNoteRequest struct {
	GranteeID  string `json:"grantee_id" validate:"required"`
	Permission string `json:"permission" validate:"required,oneof=read write"`
}
