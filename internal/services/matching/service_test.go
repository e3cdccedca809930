package matching

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/apperr"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/rules"
	pgrepo "github.com/Evzheva/chatbot-for-dating/internal/repo/postgres"
	ratesvc "github.com/Evzheva/chatbot-for-dating/internal/services/rate"
)

type pair struct{ a, b int64 }

// memoryGraph mimics the like and match tables, including the guarantee that
// a pair gets at most one match.
type memoryGraph struct {
	mu       sync.Mutex
	profiles map[int64]model.Profile
	likes    map[pair]time.Time
	matches  map[pair]time.Time
}

func newMemoryGraph(profiles ...model.Profile) *memoryGraph {
	g := &memoryGraph{
		profiles: map[int64]model.Profile{},
		likes:    map[pair]time.Time{},
		matches:  map[pair]time.Time{},
	}
	for _, p := range profiles {
		g.profiles[p.UserID] = p
	}
	return g
}

func (g *memoryGraph) Get(_ context.Context, userID int64) (model.Profile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.profiles[userID]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return p, nil
}

func (g *memoryGraph) RandomCandidate(_ context.Context, userID int64, gender enums.Gender) (model.Profile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, p := range g.profiles {
		if id == userID || p.Status != enums.ProfileStatusApproved {
			continue
		}
		if gender != "" && p.Gender != gender {
			continue
		}
		if _, liked := g.likes[pair{userID, id}]; liked {
			continue
		}
		return p, nil
	}
	return model.Profile{}, pgrepo.ErrProfileNotFound
}

func (g *memoryGraph) Submit(_ context.Context, fromUserID, toUserID int64) (enums.LikeOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.likes[pair{fromUserID, toUserID}]; ok {
		return enums.LikeOutcomeAlreadyLiked, nil
	}
	g.likes[pair{fromUserID, toUserID}] = time.Now()
	if _, ok := g.likes[pair{toUserID, fromUserID}]; !ok {
		return enums.LikeOutcomeRecorded, nil
	}
	a, b := rules.CanonicalPair(fromUserID, toUserID)
	if _, ok := g.matches[pair{a, b}]; ok {
		return enums.LikeOutcomeRecorded, nil
	}
	g.matches[pair{a, b}] = time.Now()
	return enums.LikeOutcomeMatchCreated, nil
}

func (g *memoryGraph) Exists(_ context.Context, fromUserID, toUserID int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.likes[pair{fromUserID, toUserID}]
	return ok, nil
}

func (g *memoryGraph) ListReceived(_ context.Context, userID int64, _ int) ([]model.ProfileSummary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []model.ProfileSummary
	for k, at := range g.likes {
		if k.b == userID {
			p := g.profiles[k.a]
			out = append(out, model.ProfileSummary{UserID: p.UserID, FirstName: p.FirstName, LastName: p.LastName, Username: p.Username, Class: p.Class, At: at})
		}
	}
	return out, nil
}

func (g *memoryGraph) ListGiven(_ context.Context, userID int64, _ int) ([]model.ProfileSummary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []model.ProfileSummary
	for k, at := range g.likes {
		if k.a == userID {
			p := g.profiles[k.b]
			out = append(out, model.ProfileSummary{UserID: p.UserID, FirstName: p.FirstName, Username: p.Username, At: at})
		}
	}
	return out, nil
}

type matchView struct{ g *memoryGraph }

func (m matchView) Exists(_ context.Context, userID, targetID int64) (bool, error) {
	m.g.mu.Lock()
	defer m.g.mu.Unlock()
	a, b := rules.CanonicalPair(userID, targetID)
	_, ok := m.g.matches[pair{a, b}]
	return ok, nil
}

func (m matchView) ListForUser(_ context.Context, userID int64, _ int) ([]model.ProfileSummary, error) {
	m.g.mu.Lock()
	defer m.g.mu.Unlock()
	var out []model.ProfileSummary
	for k, at := range m.g.matches {
		other := int64(0)
		switch userID {
		case k.a:
			other = k.b
		case k.b:
			other = k.a
		default:
			continue
		}
		p := m.g.profiles[other]
		out = append(out, model.ProfileSummary{UserID: p.UserID, FirstName: p.FirstName, Username: p.Username, At: at})
	}
	return out, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	likes   []pair
	matches []pair
}

func (n *recordingNotifier) LikeReceived(recipientID, likerID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.likes = append(n.likes, pair{recipientID, likerID})
}

func (n *recordingNotifier) MatchCreated(userID int64, partner model.Profile) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.matches = append(n.matches, pair{userID, partner.UserID})
}

// budgetLimiter allows left more recorded likes, then asks to wait retryAfter.
type budgetLimiter struct {
	left       int
	retryAfter int64
	recorded   int
}

func (b *budgetLimiter) RetryAfter(context.Context, ratesvc.Action, int64) (int64, error) {
	if b.left <= 0 {
		return b.retryAfter, nil
	}
	return 0, nil
}

func (b *budgetLimiter) Record(context.Context, ratesvc.Action, int64) error {
	b.left--
	b.recorded++
	return nil
}

func approved(id int64, gender enums.Gender, search enums.SearchGender) model.Profile {
	return model.Profile{
		UserID:       id,
		FirstName:    "user",
		LastName:     "test",
		Username:     "u",
		Class:        "10А",
		Gender:       gender,
		SearchGender: search,
		Status:       enums.ProfileStatusApproved,
	}
}

func newService(g *memoryGraph, notifier Notifier, limiter RateLimiter) *Service {
	return NewService(g, g, matchView{g}, limiter, notifier, nil)
}

func TestFindCandidateRespectsPreferenceAndLikes(t *testing.T) {
	g := newMemoryGraph(
		approved(1, enums.GenderMale, enums.SearchGenderFemale),
		approved(2, enums.GenderFemale, enums.SearchGenderAny),
		approved(3, enums.GenderMale, enums.SearchGenderAny),
		model.Profile{UserID: 4, Gender: enums.GenderFemale, Status: enums.ProfileStatusPendingReview},
		model.Profile{UserID: 5, Gender: enums.GenderFemale, Status: enums.ProfileStatusBanned},
	)
	svc := newService(g, nil, nil)
	ctx := context.Background()

	candidate, ok, err := svc.FindCandidate(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("find candidate: ok=%v err=%v", ok, err)
	}
	if candidate.UserID != 2 {
		t.Fatalf("only user 2 is eligible, got %d", candidate.UserID)
	}

	if _, err := svc.SubmitLike(ctx, 1, 2); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, ok, err := svc.FindCandidate(ctx, 1); err != nil || ok {
		t.Fatalf("liked candidates must not come back, ok=%v err=%v", ok, err)
	}
}

func TestFindCandidateRequiresApprovedRequester(t *testing.T) {
	g := newMemoryGraph(model.Profile{UserID: 1, Status: enums.ProfileStatusPendingReview})
	svc := newService(g, nil, nil)
	ctx := context.Background()

	if _, _, err := svc.FindCandidate(ctx, 1); !errors.Is(err, apperr.ErrNotApproved) {
		t.Fatalf("expected not approved, got %v", err)
	}
	if _, _, err := svc.FindCandidate(ctx, 42); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmitLikeOutcomesAndNotifications(t *testing.T) {
	g := newMemoryGraph(
		approved(1, enums.GenderMale, enums.SearchGenderAny),
		approved(2, enums.GenderFemale, enums.SearchGenderAny),
	)
	notifier := &recordingNotifier{}
	svc := newService(g, notifier, nil)
	ctx := context.Background()

	if _, err := svc.SubmitLike(ctx, 1, 1); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("self like: expected validation error, got %v", err)
	}

	outcome, err := svc.SubmitLike(ctx, 1, 2)
	if err != nil || outcome != enums.LikeOutcomeRecorded {
		t.Fatalf("first like: outcome=%s err=%v", outcome, err)
	}
	if len(notifier.likes) != 1 || notifier.likes[0] != (pair{2, 1}) {
		t.Fatalf("recipient must be notified anonymously: %v", notifier.likes)
	}

	outcome, err = svc.SubmitLike(ctx, 1, 2)
	if err != nil || outcome != enums.LikeOutcomeAlreadyLiked {
		t.Fatalf("repeat like: outcome=%s err=%v", outcome, err)
	}

	outcome, err = svc.SubmitLike(ctx, 2, 1)
	if err != nil || outcome != enums.LikeOutcomeMatchCreated {
		t.Fatalf("reciprocal like: outcome=%s err=%v", outcome, err)
	}
	if len(notifier.matches) != 2 {
		t.Fatalf("both sides must hear about the match: %v", notifier.matches)
	}
	if len(notifier.likes) != 1 {
		t.Fatalf("a match must not also send a plain like notification")
	}

	matches, err := svc.ListMatches(ctx, 1)
	if err != nil || len(matches) != 1 || matches[0].UserID != 2 {
		t.Fatalf("unexpected matches: %v err=%v", matches, err)
	}
}

func TestSubmitLikeToUnavailableProfile(t *testing.T) {
	g := newMemoryGraph(
		approved(1, enums.GenderMale, enums.SearchGenderAny),
		model.Profile{UserID: 2, Status: enums.ProfileStatusBanned},
	)
	svc := newService(g, nil, nil)
	ctx := context.Background()

	if _, err := svc.SubmitLike(ctx, 1, 2); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("banned target: expected not found, got %v", err)
	}
	if _, err := svc.SubmitLike(ctx, 1, 3); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("missing target: expected not found, got %v", err)
	}
}

func TestConcurrentReciprocalLikesCreateOneMatch(t *testing.T) {
	for round := 0; round < 20; round++ {
		g := newMemoryGraph(
			approved(1, enums.GenderMale, enums.SearchGenderAny),
			approved(2, enums.GenderFemale, enums.SearchGenderAny),
		)
		svc := newService(g, nil, nil)

		var wg sync.WaitGroup
		outcomes := make([]enums.LikeOutcome, 2)
		for i, p := range []pair{{1, 2}, {2, 1}} {
			wg.Add(1)
			go func(i int, p pair) {
				defer wg.Done()
				outcomes[i], _ = svc.SubmitLike(context.Background(), p.a, p.b)
			}(i, p)
		}
		wg.Wait()

		created := 0
		for _, o := range outcomes {
			if o == enums.LikeOutcomeMatchCreated {
				created++
			}
		}
		if created != 1 || len(g.matches) != 1 {
			t.Fatalf("round %d: expected exactly one match, outcomes=%v", round, outcomes)
		}
	}
}

func TestSubmitLikeRateLimited(t *testing.T) {
	g := newMemoryGraph(
		approved(1, enums.GenderMale, enums.SearchGenderAny),
		approved(2, enums.GenderFemale, enums.SearchGenderAny),
	)
	svc := newService(g, nil, &budgetLimiter{retryAfter: 17})

	_, err := svc.SubmitLike(context.Background(), 1, 2)
	if !errors.Is(err, apperr.ErrRateLimited) {
		t.Fatalf("expected rate limited, got %v", err)
	}
	if apperr.RetryAfter(err) != 17 {
		t.Fatalf("unexpected retry after: %d", apperr.RetryAfter(err))
	}
	if len(g.likes) != 0 {
		t.Fatalf("a limited like must not be stored")
	}
}

func TestRepeatedLikeKeepsRateBudget(t *testing.T) {
	g := newMemoryGraph(
		approved(1, enums.GenderMale, enums.SearchGenderAny),
		approved(2, enums.GenderFemale, enums.SearchGenderAny),
		approved(3, enums.GenderFemale, enums.SearchGenderAny),
	)
	limiter := &budgetLimiter{left: 1, retryAfter: 30}
	svc := newService(g, nil, limiter)
	ctx := context.Background()

	if outcome, err := svc.SubmitLike(ctx, 1, 2); err != nil || outcome != enums.LikeOutcomeRecorded {
		t.Fatalf("first like: outcome=%q err=%v", outcome, err)
	}
	for i := 0; i < 3; i++ {
		outcome, err := svc.SubmitLike(ctx, 1, 2)
		if err != nil || outcome != enums.LikeOutcomeAlreadyLiked {
			t.Fatalf("repeat #%d: outcome=%q err=%v", i+1, outcome, err)
		}
	}
	if limiter.recorded != 1 {
		t.Fatalf("only the stored like may be counted, got %d", limiter.recorded)
	}

	if _, err := svc.SubmitLike(ctx, 1, 3); !errors.Is(err, apperr.ErrRateLimited) {
		t.Fatalf("a new like over budget must be limited, got %v", err)
	}
}

func TestReceivedLikesAreAnonymous(t *testing.T) {
	g := newMemoryGraph(
		approved(1, enums.GenderMale, enums.SearchGenderAny),
		approved(2, enums.GenderFemale, enums.SearchGenderAny),
	)
	svc := newService(g, nil, nil)
	ctx := context.Background()

	if _, err := svc.SubmitLike(ctx, 1, 2); err != nil {
		t.Fatalf("like: %v", err)
	}

	received, err := svc.ListLikesReceived(ctx, 2)
	if err != nil || len(received) != 1 {
		t.Fatalf("list received: %v err=%v", received, err)
	}
	if received[0].FirstName != "" || received[0].LastName != "" || received[0].Username != "" {
		t.Fatalf("received like leaks identity: %+v", received[0])
	}

	given, err := svc.ListLikesGiven(ctx, 1)
	if err != nil || len(given) != 1 || given[0].UserID != 2 {
		t.Fatalf("list given: %v err=%v", given, err)
	}
}

func TestViewLikerAndMatch(t *testing.T) {
	g := newMemoryGraph(
		approved(1, enums.GenderMale, enums.SearchGenderAny),
		approved(2, enums.GenderFemale, enums.SearchGenderAny),
	)
	svc := newService(g, nil, nil)
	ctx := context.Background()

	if _, err := svc.ViewLiker(ctx, 2, 1); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("no like yet: expected not found, got %v", err)
	}
	if _, err := svc.SubmitLike(ctx, 1, 2); err != nil {
		t.Fatalf("like: %v", err)
	}

	liker, err := svc.ViewLiker(ctx, 2, 1)
	if err != nil {
		t.Fatalf("view liker: %v", err)
	}
	if liker.UserID != 0 || liker.FirstName != "" || liker.Username != "" || liker.Class != "10А" {
		t.Fatalf("liker must be anonymized: %+v", liker)
	}

	if _, err := svc.ViewMatch(ctx, 2, 1); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("no match yet: expected not found, got %v", err)
	}
	if _, err := svc.SubmitLike(ctx, 2, 1); err != nil {
		t.Fatalf("like back: %v", err)
	}
	partner, err := svc.ViewMatch(ctx, 2, 1)
	if err != nil || partner.Username != "u" {
		t.Fatalf("view match: %+v err=%v", partner, err)
	}
}
