// Package access decides whether a caller may read, write or manage a
// note. It holds no state of its own: every decision is computed from
// the note's owner and its current grant set, so revoking a grant takes
// effect on the very next call.
package access

import "sorters-server/internal/domain"

type Policy struct{}

// CanRead reports whether caller may see the note's content. The owner
// always can; anyone else needs a grant of any level.
func (Policy) CanRead(note *domain.Note, grants map[string]domain.Permission, caller string) bool {
	if caller == note.Owner {
		return true
	}
	perm, ok := grants[caller]
	return ok && (perm == domain.PermissionRead || perm == domain.PermissionWrite)
}

// CanWrite reports whether caller may mutate the note. A read grant is
// never enough.
func (Policy) CanWrite(note *domain.Note, grants map[string]domain.Permission, caller string) bool {
	if caller == note.Owner {
		return true
	}
	return grants[caller] == domain.PermissionWrite
}

// CanManage gates delete and share. Strictly owner-only: write grantees
// cannot delete a note or share it onward.
func (Policy) CanManage(note *domain.Note, caller string) bool {
	return caller == note.Owner
}
