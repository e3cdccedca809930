package profiles

import (
	"context"
	"errors"
	"testing"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/apperr"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
	pgrepo "github.com/Evzheva/chatbot-for-dating/internal/repo/postgres"
)

type fakeStore struct {
	profiles map[int64]model.Profile
	touched  map[int64]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: map[int64]model.Profile{}, touched: map[int64]string{}}
}

func (f *fakeStore) Get(_ context.Context, userID int64) (model.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeStore) Save(_ context.Context, p model.Profile) (model.Profile, error) {
	if f.profiles[p.UserID].Status == enums.ProfileStatusBanned {
		return model.Profile{}, pgrepo.ErrProfileBanned
	}
	p.Status = enums.ProfileStatusPendingReview
	f.profiles[p.UserID] = p
	return p, nil
}

func (f *fakeStore) UpdateField(_ context.Context, userID int64, field enums.ProfileField, value string) error {
	p, ok := f.profiles[userID]
	if !ok {
		return pgrepo.ErrProfileNotFound
	}
	switch field {
	case enums.FieldHobby:
		p.Hobby = value
	case enums.FieldGender:
		p.Gender = enums.Gender(value)
	}
	f.profiles[userID] = p
	return nil
}

func (f *fakeStore) TouchUsername(_ context.Context, userID int64, username string) error {
	f.touched[userID] = username
	return nil
}

func (f *fakeStore) SetPhoto(_ context.Context, userID int64, fileID, objectKey string) (string, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return "", pgrepo.ErrProfileNotFound
	}
	previous := p.PhotoObjectKey
	p.PhotoFileID = fileID
	p.PhotoObjectKey = objectKey
	f.profiles[userID] = p
	return previous, nil
}

func (f *fakeStore) Delete(_ context.Context, userID int64) (string, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return "", pgrepo.ErrProfileNotFound
	}
	delete(f.profiles, userID)
	return p.PhotoObjectKey, nil
}

type fakeArchive struct {
	next    string
	removed []string
}

func (f *fakeArchive) Archive(_ context.Context, _ int64, _ model.Photo) (string, error) {
	return f.next, nil
}

func (f *fakeArchive) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	return nil
}

type fakeNotifier struct {
	reviews []int64
}

func (f *fakeNotifier) NewProfileForReview(profile model.Profile) {
	f.reviews = append(f.reviews, profile.UserID)
}

type adminSet map[int64]bool

func (a adminSet) IsAdmin(userID int64) bool { return a[userID] }

func completeDraft() model.ProfileDraft {
	return model.ProfileDraft{
		FirstName:       "Лена",
		LastName:        "Орлова",
		Class:           "11А",
		Gender:          enums.GenderFemale,
		SearchGender:    enums.SearchGenderMale,
		Interests:       "кино",
		FavoriteSubject: "история",
		Hobby:           "танцы",
		Dream:           "путешествовать",
		AboutMe:         "весёлая",
	}
}

func TestStartBranches(t *testing.T) {
	store := newFakeStore()
	store.profiles[2] = model.Profile{UserID: 2, Status: enums.ProfileStatusPendingReview}
	store.profiles[3] = model.Profile{UserID: 3, Status: enums.ProfileStatusApproved, Username: "old"}
	store.profiles[4] = model.Profile{UserID: 4, Status: enums.ProfileStatusBanned}
	svc := NewService(store, nil, nil, adminSet{1: true}, nil)
	ctx := context.Background()

	tests := []struct {
		userID int64
		want   enums.StartState
	}{
		{userID: 1, want: enums.StartStateAdmin},
		{userID: 2, want: enums.StartStatePendingReview},
		{userID: 3, want: enums.StartStateApproved},
		{userID: 4, want: enums.StartStateBanned},
		{userID: 5, want: enums.StartStateNotFound},
	}
	for _, tc := range tests {
		view, err := svc.Start(ctx, tc.userID, "new")
		if err != nil {
			t.Fatalf("start %d: %v", tc.userID, err)
		}
		if view.State != tc.want {
			t.Fatalf("user %d: got %s want %s", tc.userID, view.State, tc.want)
		}
	}

	if store.touched[3] != "new" {
		t.Fatalf("changed username must be refreshed")
	}
	if _, ok := store.touched[5]; ok {
		t.Fatalf("unknown users have nothing to refresh")
	}
}

func TestCreateQueuesForReviewAndNotifies(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	svc := NewService(store, nil, notifier, nil, nil)

	profile, err := svc.Create(context.Background(), 10, "lena", completeDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if profile.Status != enums.ProfileStatusPendingReview || profile.Username != "lena" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if len(notifier.reviews) != 1 || notifier.reviews[0] != 10 {
		t.Fatalf("admins must be told about the new profile: %v", notifier.reviews)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil, nil, nil)
	ctx := context.Background()

	missing := completeDraft()
	missing.Dream = " "
	if _, err := svc.Create(ctx, 10, "", missing); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("blank field: expected validation error, got %v", err)
	}

	badGender := completeDraft()
	badGender.Gender = "other"
	if _, err := svc.Create(ctx, 10, "", badGender); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("bad gender: expected validation error, got %v", err)
	}
}

func TestCreateRefusesBannedUser(t *testing.T) {
	store := newFakeStore()
	store.profiles[7] = model.Profile{UserID: 7, Status: enums.ProfileStatusBanned}
	svc := NewService(store, nil, nil, nil, nil)

	if _, err := svc.Create(context.Background(), 7, "", completeDraft()); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if store.profiles[7].Status != enums.ProfileStatusBanned {
		t.Fatalf("banned profile must stay banned")
	}
}

// staleStore answers Get as if the ban has not happened yet.
type staleStore struct{ *fakeStore }

func (staleStore) Get(context.Context, int64) (model.Profile, error) {
	return model.Profile{}, pgrepo.ErrProfileNotFound
}

func TestCreateKeepsBanIssuedDuringSubmit(t *testing.T) {
	store := newFakeStore()
	store.profiles[8] = model.Profile{UserID: 8, Status: enums.ProfileStatusBanned}
	notifier := &fakeNotifier{}
	svc := NewService(staleStore{store}, nil, notifier, nil, nil)

	if _, err := svc.Create(context.Background(), 8, "", completeDraft()); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if store.profiles[8].Status != enums.ProfileStatusBanned {
		t.Fatalf("the ban must survive a racing resubmit")
	}
	if len(notifier.reviews) != 0 {
		t.Fatalf("a banned profile must not reach the review queue")
	}
}

func TestUpdateFieldKeepsStatus(t *testing.T) {
	store := newFakeStore()
	store.profiles[3] = model.Profile{UserID: 3, Status: enums.ProfileStatusApproved}
	svc := NewService(store, nil, nil, nil, nil)
	ctx := context.Background()

	if err := svc.UpdateField(ctx, 3, enums.FieldHobby, "  футбол "); err != nil {
		t.Fatalf("update: %v", err)
	}
	if store.profiles[3].Hobby != "футбол" || store.profiles[3].Status != enums.ProfileStatusApproved {
		t.Fatalf("unexpected profile after edit: %+v", store.profiles[3])
	}

	if err := svc.UpdateField(ctx, 3, enums.FieldGender, "robot"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := svc.UpdateField(ctx, 99, enums.FieldHobby, "x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetPhotoReplacesArchivedObject(t *testing.T) {
	store := newFakeStore()
	store.profiles[3] = model.Profile{UserID: 3, PhotoFileID: "old-file", PhotoObjectKey: "users/3/photo/old.jpg"}
	archive := &fakeArchive{next: "users/3/photo/new.jpg"}
	svc := NewService(store, archive, nil, nil, nil)

	profile, err := svc.SetPhoto(context.Background(), 3, model.Photo{FileID: "new-file", Data: []byte{0xff, 0xd8}})
	if err != nil {
		t.Fatalf("set photo: %v", err)
	}
	if profile.PhotoFileID != "new-file" || profile.PhotoObjectKey != "users/3/photo/new.jpg" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if len(archive.removed) != 1 || archive.removed[0] != "users/3/photo/old.jpg" {
		t.Fatalf("previous object must be removed: %v", archive.removed)
	}
}

func TestDeleteRemovesArchivedPhoto(t *testing.T) {
	store := newFakeStore()
	store.profiles[3] = model.Profile{UserID: 3, PhotoObjectKey: "users/3/photo/a.jpg"}
	archive := &fakeArchive{}
	svc := NewService(store, archive, nil, nil, nil)
	ctx := context.Background()

	if err := svc.Delete(ctx, 3); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(archive.removed) != 1 {
		t.Fatalf("archived photo must be removed")
	}
	if err := svc.Delete(ctx, 3); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second delete: expected not found, got %v", err)
	}
}
