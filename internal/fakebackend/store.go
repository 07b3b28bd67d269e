// ABOUTME: In-memory records for the fake backend: users, files, documents, templates and more
// ABOUTME: All access goes through one mutex; ids are sequential per record kind

package fakebackend

import (
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/2389/docreview/internal/api"
)

type user struct {
	api.User
	passwordHash []byte
}

type storedFile struct {
	api.File
	ownerID    int64
	storedName string
	content    []byte
}

type storedDocument struct {
	api.Document
	ownerID int64
	fileID  int64
}

type storedTemplate struct {
	api.Template
	contentTemplate string
}

type conversation struct {
	createdAt time.Time
	messages  []map[string]any
}

type store struct {
	mu sync.Mutex

	nextID map[string]int64

	users         map[int64]*user
	files         map[int64]*storedFile
	documents     map[int64]*storedDocument
	templates     map[int64]*storedTemplate
	versions      map[int64][]api.Version
	audit         []api.AuditLogEntry
	rules         []api.Rule
	perf          map[string]*api.RulePerformance
	conversations map[string]*conversation
}

func newStore() *store {
	s := &store{
		nextID:        map[string]int64{},
		users:         map[int64]*user{},
		files:         map[int64]*storedFile{},
		documents:     map[int64]*storedDocument{},
		templates:     map[int64]*storedTemplate{},
		versions:      map[int64][]api.Version{},
		perf:          map[string]*api.RulePerformance{},
		conversations: map[string]*conversation{},
	}
	s.rules = defaultRules()
	return s
}

// id must be called with mu held.
func (s *store) id(kind string) int64 {
	s.nextID[kind]++
	return s.nextID[kind]
}

func (s *store) addUser(req api.RegisterRequest) (*user, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, req.Username) {
			return nil, errDuplicate("Username already registered")
		}
		if strings.EqualFold(u.Email, req.Email) {
			return nil, errDuplicate("Email already registered")
		}
	}
	u := &user{
		User: api.User{
			ID:       s.id("user"),
			Username: req.Username,
			Email:    req.Email,
			FullName: req.FullName,
			IsActive: true,
		},
		passwordHash: hash,
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *store) userByName(name string) (*user, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == name {
			return u, true
		}
	}
	return nil, false
}

func (s *store) authenticate(name, password string) (*user, bool) {
	u, ok := s.userByName(name)
	if !ok {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
		return nil, false
	}
	return u, true
}

type errDuplicate string

func (e errDuplicate) Error() string { return string(e) }

func (s *store) record(u *user, action, resourceType string, resourceID *int64, details map[string]any, ip, agent string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := api.AuditLogEntry{
		ID:           s.id("audit"),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		IPAddress:    ip,
		UserAgent:    agent,
		CreatedAt:    api.Now(),
	}
	if u != nil {
		entry.UserID = u.ID
		entry.Username = u.Username
	}
	s.audit = append(s.audit, entry)
}

// userFiles returns the files of owner, newest first.
func (s *store) userFiles(owner int64) []api.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []api.File
	for _, f := range s.files {
		if f.ownerID == owner {
			out = append(out, f.File)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *store) file(owner, id int64) (*storedFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok || f.ownerID != owner {
		return nil, false
	}
	return f, true
}

func (s *store) userDocuments(owner int64) []api.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []api.Document
	for _, d := range s.documents {
		if d.ownerID == owner {
			out = append(out, d.Document)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *store) document(owner, id int64) (*storedDocument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.documents[id]
	if !ok || d.ownerID != owner {
		return nil, false
	}
	return d, true
}

// addVersion must be called with mu held.
func (s *store) addVersion(docID int64, content, description string, rollbackFrom *int) api.Version {
	existing := s.versions[docID]
	v := api.Version{
		ID:                  s.id("version"),
		DocumentID:          docID,
		VersionNumber:       len(existing) + 1,
		Content:             content,
		ChangeDescription:   description,
		RollbackFromVersion: rollbackFrom,
		CreatedAt:           api.Now(),
	}
	if rollbackFrom != nil {
		v.IsRollback = 1
	}
	s.versions[docID] = append(existing, v)
	return v
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return items[skip:end]
}

func defaultRules() []api.Rule {
	intp := func(n int) *int { return &n }
	return []api.Rule{
		{ID: "title_required", Name: "Title present", Description: "Document must start with a title line", RuleType: "structure", Category: "format", Enabled: true, Priority: 1, Critical: true},
		{ID: "min_length", Name: "Minimum length", Description: "Document must contain enough text", RuleType: "length", Category: "content", Enabled: true, Priority: 2, MinLength: intp(20)},
		{ID: "max_length", Name: "Maximum length", Description: "Document must not be excessively long", RuleType: "length", Category: "content", Enabled: true, Priority: 3, MaxLength: intp(50000)},
		{ID: "sensitive_words", Name: "Sensitive words", Description: "Flags words that must not appear in official documents", RuleType: "keyword", Category: "compliance", Enabled: true, Priority: 1, Critical: true, Keywords: []string{"confidential", "secret", "password"}},
		{ID: "double_space", Name: "Repeated spaces", Description: "Flags repeated spaces between words", RuleType: "pattern", Category: "format", Enabled: true, Priority: 5, Pattern: `\S  +\S`},
		{ID: "date_format", Name: "Date format", Description: "Dates should use YYYY-MM-DD", RuleType: "pattern", Category: "format", Enabled: false, Priority: 4, Pattern: `\b\d{1,2}/\d{1,2}/\d{2,4}\b`},
	}
}
