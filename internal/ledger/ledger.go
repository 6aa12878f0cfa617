// Package ledger is the authoritative note store: one mapping from note
// id to record, one grant set per note, one monotonic id counter. Every
// mutation validates its input, checks the caller against the access
// policy, and either applies fully or leaves the state untouched.
package ledger

import (
	"sort"
	"sync"
	"time"

	"sorters-server/internal/access"
	"sorters-server/internal/domain"
)

const (
	MaxTitleLen   = 200
	MaxContentLen = 10000
	MaxTags       = 10
	MaxTagLen     = 50
	MaxFolderLen  = 100
)

// NoteInput carries the owner-supplied fields of a new note.
type NoteInput struct {
	Title       string
	Content     string
	Tags        []string
	Folder      string
	IsEncrypted bool
}

// Ledger serializes all operations behind a single mutex so that every
// mutation is applied fully or not at all.
type Ledger struct {
	mu     sync.RWMutex
	notes  map[uint64]*domain.Note
	grants map[uint64]map[string]domain.Permission
	nextID uint64

	policy access.Policy
	now    func() time.Time
}

func New() *Ledger {
	return NewWithClock(time.Now)
}

// NewWithClock builds a ledger with an injected time source. Tests use a
// ticking fake so timestamp ordering is deterministic.
func NewWithClock(now func() time.Time) *Ledger {
	return &Ledger{
		notes:  make(map[uint64]*domain.Note),
		grants: make(map[uint64]map[string]domain.Permission),
		now:    now,
	}
}

// Create validates the input, allocates the next id and stores the note.
// The counter only advances on success, so a rejected create never
// retires an id.
func (l *Ledger) Create(owner string, in NoteInput) (uint64, error) {
	if owner == "" {
		return 0, validationErr("owner", "must not be empty")
	}
	if err := validateTitle(in.Title); err != nil {
		return 0, err
	}
	if err := validateContent(in.Content); err != nil {
		return 0, err
	}
	if err := validateTags(in.Tags); err != nil {
		return 0, err
	}
	if len(in.Folder) > MaxFolderLen {
		return 0, validationErr("folder", "too long")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	id := l.nextID
	ts := l.now()

	l.notes[id] = &domain.Note{
		ID:          id,
		Owner:       owner,
		Title:       in.Title,
		Content:     in.Content,
		Tags:        append([]string(nil), in.Tags...),
		Folder:      in.Folder,
		IsEncrypted: in.IsEncrypted,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	return id, nil
}

// Get returns a copy of the note. Callers without read access get
// ErrNotAuthorized rather than ErrNotFound: the id space is public, the
// content is not.
func (l *Ledger) Get(id uint64, caller string) (*domain.Note, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	note, ok := l.notes[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !l.policy.CanRead(note, l.grants[id], caller) {
		return nil, ErrNotAuthorized
	}
	return cloneNote(note), nil
}

// Owner resolves a note's owner without a read-access check.
func (l *Ledger) Owner(id uint64) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	note, ok := l.notes[id]
	if !ok {
		return "", ErrNotFound
	}
	return note.Owner, nil
}

func (l *Ledger) IsOwner(id uint64, principal string) (bool, error) {
	owner, err := l.Owner(id)
	if err != nil {
		return false, err
	}
	return owner == principal, nil
}

func (l *Ledger) UpdateTitle(id uint64, caller, title string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	note, err := l.writable(id, caller)
	if err != nil {
		return err
	}
	if err := validateTitle(title); err != nil {
		return err
	}

	note.Title = title
	note.UpdatedAt = l.now()
	return nil
}

func (l *Ledger) UpdateContent(id uint64, caller, content string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	note, err := l.writable(id, caller)
	if err != nil {
		return err
	}
	if err := validateContent(content); err != nil {
		return err
	}

	note.Content = content
	note.UpdatedAt = l.now()
	return nil
}

// AddTag appends one tag. Duplicates, oversized tags and a full tag list
// are all rejected before the note is touched.
func (l *Ledger) AddTag(id uint64, caller, tag string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	note, err := l.writable(id, caller)
	if err != nil {
		return err
	}
	if err := validateTag(tag); err != nil {
		return err
	}
	if len(note.Tags) >= MaxTags {
		return validationErr("tags", "tag limit reached")
	}
	for _, existing := range note.Tags {
		if existing == tag {
			return validationErr("tag", "already present")
		}
	}

	note.Tags = append(note.Tags, tag)
	note.UpdatedAt = l.now()
	return nil
}

// UpdateTags replaces the whole tag list.
func (l *Ledger) UpdateTags(id uint64, caller string, tags []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	note, err := l.writable(id, caller)
	if err != nil {
		return err
	}
	if err := validateTags(tags); err != nil {
		return err
	}

	note.Tags = append([]string(nil), tags...)
	note.UpdatedAt = l.now()
	return nil
}

// Delete removes the note and every grant attached to it in one step.
// Owner-only: a write grant does not extend to deletion. The id is
// retired permanently.
func (l *Ledger) Delete(id uint64, caller string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	note, ok := l.notes[id]
	if !ok {
		return ErrNotFound
	}
	if !l.policy.CanManage(note, caller) {
		return ErrNotAuthorized
	}

	delete(l.notes, id)
	delete(l.grants, id)
	return nil
}

// Share inserts or overwrites the grant for (id, grantee). Owner-only;
// grantees cannot share onward. Granting to the owner is rejected as
// meaningless.
func (l *Ledger) Share(id uint64, caller, grantee string, perm domain.Permission) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	note, ok := l.notes[id]
	if !ok {
		return ErrNotFound
	}
	if !l.policy.CanManage(note, caller) {
		return ErrNotAuthorized
	}
	if grantee == "" {
		return validationErr("grantee", "must not be empty")
	}
	if grantee == note.Owner {
		return validationErr("grantee", "cannot share a note with its owner")
	}
	if _, ok := domain.ParsePermission(string(perm)); !ok {
		return validationErr("permission", "must be read or write")
	}

	if l.grants[id] == nil {
		l.grants[id] = make(map[string]domain.Permission)
	}
	l.grants[id][grantee] = perm
	return nil
}

// Count returns the id counter: the number of notes ever created,
// deletions included. Ids are not contiguous per owner once notes have
// been deleted.
func (l *Ledger) Count() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nextID
}

// CountOwnedBy returns the number of live notes owned by owner.
func (l *Ledger) CountOwnedBy(owner string) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var n uint64
	for _, note := range l.notes {
		if note.Owner == owner {
			n++
		}
	}
	return n
}

// ListOwnedBy returns copies of all live notes owned by owner, ordered
// by id.
func (l *Ledger) ListOwnedBy(owner string) []*domain.Note {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var notes []*domain.Note
	for _, note := range l.notes {
		if note.Owner == owner {
			notes = append(notes, cloneNote(note))
		}
	}
	sortByID(notes)
	return notes
}

// ListSharedWith returns copies of all live notes the principal holds a
// grant on, ordered by id.
func (l *Ledger) ListSharedWith(principal string) []*domain.Note {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var notes []*domain.Note
	for id, grants := range l.grants {
		if _, ok := grants[principal]; ok {
			if note, live := l.notes[id]; live {
				notes = append(notes, cloneNote(note))
			}
		}
	}
	sortByID(notes)
	return notes
}

// Grants returns the grant set of a live note. Used by the persistence
// mirror and the event broadcaster, not by the access policy itself.
func (l *Ledger) Grants(id uint64) ([]domain.Grant, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.notes[id]; !ok {
		return nil, ErrNotFound
	}
	return grantList(id, l.grants[id]), nil
}

// Restore loads a previously persisted state. The counter never moves
// backwards: it is bumped past the highest restored id so retired ids
// stay retired.
func (l *Ledger) Restore(notes []*domain.Note, grants []domain.Grant, nextID uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.notes = make(map[uint64]*domain.Note, len(notes))
	l.grants = make(map[uint64]map[string]domain.Permission)
	for _, note := range notes {
		l.notes[note.ID] = cloneNote(note)
		if note.ID > nextID {
			nextID = note.ID
		}
	}
	for _, g := range grants {
		if _, ok := l.notes[g.NoteID]; !ok {
			continue
		}
		if l.grants[g.NoteID] == nil {
			l.grants[g.NoteID] = make(map[string]domain.Permission)
		}
		l.grants[g.NoteID][g.GranteeID] = g.Permission
	}
	l.nextID = nextID
}

// writable resolves the note and checks write access, in that order:
// a missing note reports ErrNotFound even to callers that would not
// have been authorized. Caller must hold the write lock.
func (l *Ledger) writable(id uint64, caller string) (*domain.Note, error) {
	note, ok := l.notes[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !l.policy.CanWrite(note, l.grants[id], caller) {
		return nil, ErrNotAuthorized
	}
	return note, nil
}

func validateTitle(title string) error {
	if title == "" {
		return validationErr("title", "must not be empty")
	}
	if len(title) > MaxTitleLen {
		return validationErr("title", "too long")
	}
	return nil
}

func validateContent(content string) error {
	if content == "" {
		return validationErr("content", "must not be empty")
	}
	if len(content) > MaxContentLen {
		return validationErr("content", "too long")
	}
	return nil
}

func validateTag(tag string) error {
	if tag == "" {
		return validationErr("tag", "must not be empty")
	}
	if len(tag) > MaxTagLen {
		return validationErr("tag", "too long")
	}
	return nil
}

func validateTags(tags []string) error {
	if len(tags) > MaxTags {
		return validationErr("tags", "too many tags")
	}
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if err := validateTag(tag); err != nil {
			return err
		}
		if seen[tag] {
			return validationErr("tags", "duplicate tag")
		}
		seen[tag] = true
	}
	return nil
}

func cloneNote(note *domain.Note) *domain.Note {
	clone := *note
	clone.Tags = append([]string(nil), note.Tags...)
	return &clone
}

func grantList(noteID uint64, grants map[string]domain.Permission) []domain.Grant {
	if len(grants) == 0 {
		return nil
	}
	list := make([]domain.Grant, 0, len(grants))
	for grantee, perm := range grants {
		list = append(list, domain.Grant{NoteID: noteID, GranteeID: grantee, Permission: perm})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].GranteeID < list[j].GranteeID })
	return list
}

func sortByID(notes []*domain.Note) {
	sort.Slice(notes, func(i, j int) bool { return notes[i].ID < notes[j].ID })
}
