// Package savedurls manages the persisted list of named URL shortcuts.
package savedurls

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/verte-zerg/perfdash/internal/model"
)

// ErrNotFound is returned when no entry matches an ID or reference.
var ErrNotFound = errors.New("saved URL not found")

// Form field names reported by IncompleteField and InvalidURL errors.
const (
	FieldName = "name"
	FieldURL  = "url"
)

// Store persists the saved URL list wholesale.
type Store interface {
	LoadSavedURLs(ctx context.Context) ([]model.SavedURL, error)
	SaveSavedURLs(ctx context.Context, entries []model.SavedURL) error
}

// Registry is the in-memory saved URL list backed by a Store.
type Registry struct {
	mu      sync.Mutex
	store   Store
	entries []model.SavedURL
	newID   func() string
}

// Load reads the saved URL list from st.
func Load(ctx context.Context, st Store) (*Registry, error) {
	entries, err := st.LoadSavedURLs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load saved urls: %w", err)
	}
	return &Registry{store: st, entries: entries, newID: uuid.NewString}, nil
}

// List returns a copy of the entries in list order.
func (r *Registry) List() []model.SavedURL {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.SavedURL(nil), r.entries...)
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Add validates and appends a new unselected entry.
func (r *Registry) Add(ctx context.Context, name, rawURL string) (model.SavedURL, error) {
	name, rawURL, err := validate(name, rawURL)
	if err != nil {
		return model.SavedURL{}, err
	}
	entry := model.SavedURL{ID: r.newID(), Name: name, URL: rawURL}
	err = r.mutate(ctx, func(entries []model.SavedURL) ([]model.SavedURL, error) {
		return append(entries, entry), nil
	})
	if err != nil {
		return model.SavedURL{}, err
	}
	return entry, nil
}

// Edit replaces the name and URL of the entry with id.
func (r *Registry) Edit(ctx context.Context, id, name, rawURL string) error {
	name, rawURL, err := validate(name, rawURL)
	if err != nil {
		return err
	}
	return r.mutate(ctx, func(entries []model.SavedURL) ([]model.SavedURL, error) {
		i := indexOf(entries, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		entries[i].Name = name
		entries[i].URL = rawURL
		return entries, nil
	})
}

// Remove deletes the entry with id.
func (r *Registry) Remove(ctx context.Context, id string) error {
	return r.mutate(ctx, func(entries []model.SavedURL) ([]model.SavedURL, error) {
		i := indexOf(entries, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return append(entries[:i], entries[i+1:]...), nil
	})
}

// Toggle flips the selected flag of the entry with id.
func (r *Registry) Toggle(ctx context.Context, id string) error {
	return r.mutate(ctx, func(entries []model.SavedURL) ([]model.SavedURL, error) {
		i := indexOf(entries, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		entries[i].Selected = !entries[i].Selected
		return entries, nil
	})
}

// SetSelected sets the selected flag of the entry with id.
func (r *Registry) SetSelected(ctx context.Context, id string, selected bool) error {
	return r.mutate(ctx, func(entries []model.SavedURL) ([]model.SavedURL, error) {
		i := indexOf(entries, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		entries[i].Selected = selected
		return entries, nil
	})
}

// SelectAll marks every entry selected.
func (r *Registry) SelectAll(ctx context.Context) error {
	return r.setAll(ctx, true)
}

// DeselectAll clears every selected flag.
func (r *Registry) DeselectAll(ctx context.Context) error {
	return r.setAll(ctx, false)
}

// LoadSelected returns the URLs of selected entries in list order.
func (r *Registry) LoadSelected() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var urls []string
	for _, e := range r.entries {
		if e.Selected {
			urls = append(urls, e.URL)
		}
	}
	if len(urls) == 0 {
		return nil, model.NewError(model.MissingSelection, "no saved URLs selected")
	}
	return urls, nil
}

// Resolve finds an entry by exact ID, then exact name, then unique ID prefix.
func (r *Registry) Resolve(ref string) (model.SavedURL, error) {
	ref = strings.TrimSpace(ref)
	r.mu.Lock()
	defer r.mu.Unlock()
	if ref == "" {
		return model.SavedURL{}, fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	if i := indexOf(r.entries, ref); i >= 0 {
		return r.entries[i], nil
	}
	var byName, byPrefix []model.SavedURL
	for _, e := range r.entries {
		if e.Name == ref {
			byName = append(byName, e)
		}
		if strings.HasPrefix(e.ID, ref) {
			byPrefix = append(byPrefix, e)
		}
	}
	if len(byName) > 0 {
		return pickOne(ref, byName)
	}
	return pickOne(ref, byPrefix)
}

func pickOne(ref string, matches []model.SavedURL) (model.SavedURL, error) {
	switch len(matches) {
	case 0:
		return model.SavedURL{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return model.SavedURL{}, fmt.Errorf("ambiguous saved URL reference %q matches %d entries", ref, len(matches))
	}
}

func (r *Registry) setAll(ctx context.Context, selected bool) error {
	return r.mutate(ctx, func(entries []model.SavedURL) ([]model.SavedURL, error) {
		for i := range entries {
			entries[i].Selected = selected
		}
		return entries, nil
	})
}

// mutate applies fn to a copy and commits it only after the store accepted it.
func (r *Registry) mutate(ctx context.Context, fn func([]model.SavedURL) ([]model.SavedURL, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next, err := fn(append([]model.SavedURL(nil), r.entries...))
	if err != nil {
		return err
	}
	if err := r.store.SaveSavedURLs(ctx, next); err != nil {
		return fmt.Errorf("failed to save saved urls: %w", err)
	}
	r.entries = next
	return nil
}

func validate(name, rawURL string) (string, string, error) {
	name = strings.TrimSpace(name)
	rawURL = strings.TrimSpace(rawURL)
	if name == "" {
		return "", "", model.FieldError(model.IncompleteField, FieldName, "name is required")
	}
	if rawURL == "" {
		return "", "", model.FieldError(model.IncompleteField, FieldURL, "URL is required")
	}
	if !model.ValidURL(rawURL) {
		err := model.InvalidURLError([]string{rawURL})
		err.Field = FieldURL
		return "", "", err
	}
	return name, rawURL, nil
}

func indexOf(entries []model.SavedURL, id string) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
