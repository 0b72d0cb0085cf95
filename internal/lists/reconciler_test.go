package lists

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/wanderlist/wanderlist/internal/models"
)

// fakeStore tracks membership in memory and records every write.
type fakeStore struct {
	lists      []*models.UserList
	membership map[uuid.UUID]map[string]bool // listID -> placeID -> present

	readErr  error
	applyErr error

	applyCalls int
	lastAdd    []uuid.UUID
	lastRemove []uuid.UUID
}

func newFakeStore(lists ...*models.UserList) *fakeStore {
	s := &fakeStore{
		lists:      lists,
		membership: make(map[uuid.UUID]map[string]bool),
	}
	for _, l := range lists {
		s.membership[l.ID] = make(map[string]bool)
	}
	return s
}

func (s *fakeStore) addPlace(listID uuid.UUID, placeID string) {
	s.membership[listID][placeID] = true
}

func (s *fakeStore) GetMembershipByUser(_ context.Context, userID uuid.UUID, placeID string) ([]models.ListMembership, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	var out []models.ListMembership
	for _, l := range s.lists {
		if l.UserID != userID {
			continue
		}
		out = append(out, models.ListMembership{
			List:          l,
			ContainsPlace: s.membership[l.ID][placeID],
		})
	}
	return out, nil
}

func (s *fakeStore) ApplyMembership(_ context.Context, placeID string, toAdd, toRemove []uuid.UUID) error {
	s.applyCalls++
	s.lastAdd = toAdd
	s.lastRemove = toRemove
	if s.applyErr != nil {
		return s.applyErr
	}
	for _, id := range toAdd {
		s.membership[id][placeID] = true
	}
	for _, id := range toRemove {
		delete(s.membership[id], placeID)
	}
	return nil
}

func makeList(userID uuid.UUID, name string, isDefault bool) *models.UserList {
	return &models.UserList{ID: uuid.New(), UserID: userID, Name: name, IsDefault: isDefault}
}

func TestReconcile_EmptyPlaceID(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	store := newFakeStore(makeList(userID, "Likes", true))
	r := NewReconciler(store, nil)

	for _, placeID := range []string{"", "   "} {
		err := r.Reconcile(context.Background(), userID, placeID, nil)
		if !errors.Is(err, ErrInvalidPlaceID) {
			t.Errorf("placeID %q: expected ErrInvalidPlaceID, got %v", placeID, err)
		}
	}
	if store.applyCalls != 0 {
		t.Error("validation failure must not reach storage")
	}
}

func TestReconcile_ForeignListRejected(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	store := newFakeStore(makeList(userID, "Likes", true))
	r := NewReconciler(store, nil)

	foreign := uuid.New()
	err := r.Reconcile(context.Background(), userID, "place-1", []uuid.UUID{foreign})
	if !errors.Is(err, ErrListNotOwned) {
		t.Fatalf("expected ErrListNotOwned, got %v", err)
	}
	if store.applyCalls != 0 {
		t.Error("ownership violation must not issue writes")
	}
}

func TestReconcile_DiffCorrectness(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	listA := makeList(userID, "A", true)
	listB := makeList(userID, "B", false)
	listC := makeList(userID, "C", false)
	store := newFakeStore(listA, listB, listC)

	// Current membership {A, C}, desired {A, B}.
	store.addPlace(listA.ID, "place-1")
	store.addPlace(listC.ID, "place-1")

	r := NewReconciler(store, nil)
	err := r.Reconcile(context.Background(), userID, "place-1", []uuid.UUID{listA.ID, listB.ID})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if len(store.lastAdd) != 1 || store.lastAdd[0] != listB.ID {
		t.Errorf("expected exactly add(B), got %v", store.lastAdd)
	}
	if len(store.lastRemove) != 1 || store.lastRemove[0] != listC.ID {
		t.Errorf("expected exactly remove(C), got %v", store.lastRemove)
	}

	if !store.membership[listA.ID]["place-1"] {
		t.Error("A must be untouched and still contain the place")
	}
	if !store.membership[listB.ID]["place-1"] {
		t.Error("B must now contain the place")
	}
	if store.membership[listC.ID]["place-1"] {
		t.Error("C must no longer contain the place")
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	listA := makeList(userID, "A", true)
	listB := makeList(userID, "B", false)
	store := newFakeStore(listA, listB)

	r := NewReconciler(store, nil)
	desired := []uuid.UUID{listA.ID, listB.ID}

	if err := r.Reconcile(context.Background(), userID, "place-7", desired); err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}
	if store.applyCalls != 1 {
		t.Fatalf("expected one apply, got %d", store.applyCalls)
	}

	// Second call with the same desired state issues zero writes.
	if err := r.Reconcile(context.Background(), userID, "place-7", desired); err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}
	if store.applyCalls != 1 {
		t.Errorf("idempotent call issued writes: apply count %d", store.applyCalls)
	}
}

func TestReconcile_EmptyDesiredRemovesEverywhere(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	listA := makeList(userID, "listA", true)
	store := newFakeStore(listA)
	store.addPlace(listA.ID, "place-42")

	r := NewReconciler(store, nil)
	if err := r.Reconcile(context.Background(), userID, "place-42", nil); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if store.membership[listA.ID]["place-42"] {
		t.Error("place must be removed from all lists when desired set is empty")
	}
}

func TestReconcile_StorageFailureIsHardError(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	listA := makeList(userID, "A", true)

	t.Run("read failure", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore(listA)
		store.readErr = errors.New("db down")
		r := NewReconciler(store, nil)
		if err := r.Reconcile(context.Background(), userID, "p", nil); err == nil {
			t.Error("read failure must propagate")
		}
	})

	t.Run("write failure", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore(listA)
		store.applyErr = errors.New("constraint violation")
		r := NewReconciler(store, nil)
		err := r.Reconcile(context.Background(), userID, "p", []uuid.UUID{listA.ID})
		if err == nil {
			t.Error("write failure must propagate")
		}
	})
}

func TestSetLiked(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	likes := makeList(userID, "Likes", true)
	other := makeList(userID, "Coffee spots", false)
	store := newFakeStore(likes, other)
	store.addPlace(other.ID, "place-9")

	r := NewReconciler(store, nil)

	if err := r.SetLiked(context.Background(), userID, "place-9", true); err != nil {
		t.Fatalf("SetLiked(true): %v", err)
	}
	if !store.membership[likes.ID]["place-9"] {
		t.Error("place should be in the default list after liking")
	}
	if !store.membership[other.ID]["place-9"] {
		t.Error("liking must not disturb other list membership")
	}

	if err := r.SetLiked(context.Background(), userID, "place-9", false); err != nil {
		t.Fatalf("SetLiked(false): %v", err)
	}
	if store.membership[likes.ID]["place-9"] {
		t.Error("place should leave the default list after unliking")
	}
	if !store.membership[other.ID]["place-9"] {
		t.Error("unliking must not disturb other list membership")
	}
}

func TestSetLiked_NoDefaultList(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	store := newFakeStore(makeList(userID, "Not default", false))
	r := NewReconciler(store, nil)

	err := r.SetLiked(context.Background(), userID, "p", true)
	if !errors.Is(err, ErrNoDefaultList) {
		t.Fatalf("expected ErrNoDefaultList, got %v", err)
	}
}

func TestDiffMembership(t *testing.T) {
	t.Parallel()

	a, b, c := uuid.New(), uuid.New(), uuid.New()

	toAdd, toRemove := diffMembership(
		map[uuid.UUID]bool{a: true, b: true},
		map[uuid.UUID]bool{a: true, c: true},
	)

	if len(toAdd) != 1 || toAdd[0] != b {
		t.Errorf("toAdd = %v, want [%s]", toAdd, b)
	}
	if len(toRemove) != 1 || toRemove[0] != c {
		t.Errorf("toRemove = %v, want [%s]", toRemove, c)
	}

	toAdd, toRemove = diffMembership(nil, nil)
	if len(toAdd) != 0 || len(toRemove) != 0 {
		t.Error("empty sets should produce an empty diff")
	}
}
