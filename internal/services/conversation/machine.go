package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/apperr"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
	"github.com/Evzheva/chatbot-for-dating/internal/pkg/validate"
)

type ReplyKind string

const (
	// ReplyPrompt asks for free text for Reply.Field.
	ReplyPrompt ReplyKind = "prompt"
	// ReplyChoice asks for a button press for Reply.Field.
	ReplyChoice ReplyKind = "choice"
	// ReplyInvalid rejects the input; the same step is asked again.
	ReplyInvalid ReplyKind = "invalid"
	ReplyDone    ReplyKind = "done"
	// ReplyIdle means no dialogue is active for the user.
	ReplyIdle ReplyKind = "idle"
)

type Reply struct {
	Kind     ReplyKind
	Mode     enums.ConversationMode
	Field    enums.ProfileField
	TargetID int64

	Profile  *model.Profile
	Report   *model.ReportOutcome
	Decision *model.DecisionResult
}

type ProfileWriter interface {
	Get(ctx context.Context, userID int64) (model.Profile, error)
	Create(ctx context.Context, userID int64, username string, draft model.ProfileDraft) (model.Profile, error)
	UpdateField(ctx context.Context, userID int64, field enums.ProfileField, value string) error
	SetPhoto(ctx context.Context, userID int64, photo model.Photo) (model.Profile, error)
}

type ReportSubmitter interface {
	Submit(ctx context.Context, reporterID, targetID int64, reason string) (model.ReportOutcome, error)
}

type ModerationDecider interface {
	DecideProfile(ctx context.Context, adminID, targetID int64, decision enums.ModerationDecision, reason string) (model.DecisionResult, error)
}

type AdminChecker interface {
	IsAdmin(userID int64) bool
}

type Dependencies struct {
	Store      Store
	Profiles   ProfileWriter
	Reports    ReportSubmitter
	Moderation ModerationDecider
	Admins     AdminChecker
	Logger     *zap.Logger
}

// Machine routes free text, button choices and photos to the dialogue the
// user is in. Calls for the same user are serialized.
type Machine struct {
	store      Store
	profiles   ProfileWriter
	reports    ReportSubmitter
	moderation ModerationDecider
	admins     AdminChecker
	logger     *zap.Logger
	locks      *keyedMutex
	now        func() time.Time
}

func NewMachine(deps Dependencies) *Machine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Machine{
		store:      deps.Store,
		profiles:   deps.Profiles,
		reports:    deps.Reports,
		moderation: deps.Moderation,
		admins:     deps.Admins,
		logger:     log,
		locks:      newKeyedMutex(),
		now:        time.Now,
	}
}

func (m *Machine) BeginProfileCreation(ctx context.Context, userID int64, username string) (Reply, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	existing, err := m.profiles.Get(ctx, userID)
	switch {
	case err == nil && existing.Status == enums.ProfileStatusBanned:
		return Reply{}, fmt.Errorf("%w: user %d is banned", apperr.ErrForbidden, userID)
	case err != nil && !errors.Is(err, apperr.ErrNotFound):
		return Reply{}, err
	}

	first := enums.CreationSteps[0]
	state := State{
		Mode:     enums.ModeProfileCreation,
		Field:    first,
		Username: username,
	}
	if err := m.save(ctx, userID, state); err != nil {
		return Reply{}, err
	}

	return stepReply(enums.ModeProfileCreation, first), nil
}

// BeginEdit starts a one-message edit of a free-text field. Gender and search
// preference are edited with buttons and never enter this mode.
func (m *Machine) BeginEdit(ctx context.Context, userID int64, field enums.ProfileField) (Reply, error) {
	if !field.Valid() || field.IsChoice() {
		return Reply{}, fmt.Errorf("%w: field %q is not editable as text", apperr.ErrValidation, field)
	}

	unlock := m.locks.Lock(userID)
	defer unlock()

	if _, err := m.profiles.Get(ctx, userID); err != nil {
		return Reply{}, err
	}

	state := State{Mode: enums.ModeEditingProfile, Field: field}
	if err := m.save(ctx, userID, state); err != nil {
		return Reply{}, err
	}

	return Reply{Kind: ReplyPrompt, Mode: enums.ModeEditingProfile, Field: field}, nil
}

// BeginReport starts a report. targetID is zero when the reporter has to type
// the id of the reported user.
func (m *Machine) BeginReport(ctx context.Context, userID, targetID int64) (Reply, error) {
	if targetID == userID {
		return Reply{}, fmt.Errorf("%w: cannot report yourself", apperr.ErrValidation)
	}

	unlock := m.locks.Lock(userID)
	defer unlock()

	state := State{Mode: enums.ModeAwaitingReportID}
	if targetID > 0 {
		state = State{Mode: enums.ModeAwaitingReportReason, TargetID: targetID}
	}
	if err := m.save(ctx, userID, state); err != nil {
		return Reply{}, err
	}

	return Reply{Kind: ReplyPrompt, Mode: state.Mode, TargetID: state.TargetID}, nil
}

// BeginModerationReason asks an admin for the reason of a reject or ban.
func (m *Machine) BeginModerationReason(ctx context.Context, adminID, targetID int64, decision enums.ModerationDecision) (Reply, error) {
	if m.admins == nil || !m.admins.IsAdmin(adminID) {
		return Reply{}, apperr.ErrForbidden
	}

	var mode enums.ConversationMode
	switch decision {
	case enums.ModerationDecisionReject:
		mode = enums.ModeAwaitingRejectReason
	case enums.ModerationDecisionBan:
		mode = enums.ModeAwaitingBanReason
	default:
		return Reply{}, fmt.Errorf("%w: decision %q takes no reason", apperr.ErrValidation, decision)
	}
	if targetID <= 0 {
		return Reply{}, fmt.Errorf("%w: target id is required", apperr.ErrValidation)
	}

	unlock := m.locks.Lock(adminID)
	defer unlock()

	state := State{Mode: mode, TargetID: targetID, Decision: decision}
	if err := m.save(ctx, adminID, state); err != nil {
		return Reply{}, err
	}

	return Reply{Kind: ReplyPrompt, Mode: mode, TargetID: targetID}, nil
}

func (m *Machine) BeginPhoto(ctx context.Context, userID int64) (Reply, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	if _, err := m.profiles.Get(ctx, userID); err != nil {
		return Reply{}, err
	}

	if err := m.save(ctx, userID, State{Mode: enums.ModeAwaitingPhoto}); err != nil {
		return Reply{}, err
	}

	return Reply{Kind: ReplyPrompt, Mode: enums.ModeAwaitingPhoto}, nil
}

func (m *Machine) Cancel(ctx context.Context, userID int64) error {
	unlock := m.locks.Lock(userID)
	defer unlock()

	if err := m.store.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear conversation state: %w", err)
	}
	return nil
}

func (m *Machine) Current(ctx context.Context, userID int64) (State, error) {
	state, _, err := m.store.Get(ctx, userID)
	if err != nil {
		return State{}, fmt.Errorf("get conversation state: %w", err)
	}
	return state, nil
}

// SubmitText feeds one free-text message into the active dialogue.
func (m *Machine) SubmitText(ctx context.Context, userID int64, text string) (Reply, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	state, ok, err := m.store.Get(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("get conversation state: %w", err)
	}
	if !ok || !state.Active() {
		return Reply{Kind: ReplyIdle}, nil
	}

	text = strings.TrimSpace(text)

	switch state.Mode {
	case enums.ModeProfileCreation:
		return m.creationText(ctx, userID, state, text)
	case enums.ModeEditingProfile:
		return m.editText(ctx, userID, state, text)
	case enums.ModeAwaitingReportID:
		return m.reportIDText(ctx, userID, state, text)
	case enums.ModeAwaitingReportReason:
		return m.reportReasonText(ctx, userID, state, text)
	case enums.ModeAwaitingRejectReason, enums.ModeAwaitingBanReason:
		return m.moderationReasonText(ctx, userID, state, text)
	case enums.ModeAwaitingPhoto:
		return Reply{Kind: ReplyInvalid, Mode: state.Mode}, nil
	default:
		m.logger.Warn("unknown conversation mode, resetting", zap.Int64("user_id", userID), zap.String("mode", string(state.Mode)))
		if err := m.store.Clear(ctx, userID); err != nil {
			return Reply{}, fmt.Errorf("clear conversation state: %w", err)
		}
		return Reply{Kind: ReplyIdle}, nil
	}
}

// SubmitChoice answers a button step of profile creation.
func (m *Machine) SubmitChoice(ctx context.Context, userID int64, field enums.ProfileField, value string) (Reply, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	state, ok, err := m.store.Get(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("get conversation state: %w", err)
	}
	if !ok || state.Mode != enums.ModeProfileCreation {
		return Reply{Kind: ReplyIdle}, nil
	}
	if state.Field != field || !field.IsChoice() {
		return stepReply(state.Mode, state.Field), nil
	}
	if !validChoice(field, value) {
		return Reply{Kind: ReplyInvalid, Mode: state.Mode, Field: field}, nil
	}

	state.Draft.Set(field, value)
	return m.advanceCreation(ctx, userID, state)
}

// SubmitPhoto stores a photo sent while the user is asked for one.
func (m *Machine) SubmitPhoto(ctx context.Context, userID int64, photo model.Photo) (Reply, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	state, ok, err := m.store.Get(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("get conversation state: %w", err)
	}
	if !ok || state.Mode != enums.ModeAwaitingPhoto {
		return Reply{Kind: ReplyIdle}, nil
	}
	if photo.FileID == "" {
		return Reply{Kind: ReplyInvalid, Mode: state.Mode}, nil
	}

	profile, err := m.profiles.SetPhoto(ctx, userID, photo)
	if err != nil {
		return m.fail(ctx, userID, state, err)
	}
	m.finish(ctx, userID)

	return Reply{Kind: ReplyDone, Mode: state.Mode, Profile: &profile}, nil
}

func (m *Machine) creationText(ctx context.Context, userID int64, state State, text string) (Reply, error) {
	if state.Field.IsChoice() {
		return Reply{Kind: ReplyChoice, Mode: state.Mode, Field: state.Field}, nil
	}
	if !validate.Required(text) {
		return Reply{Kind: ReplyInvalid, Mode: state.Mode, Field: state.Field}, nil
	}

	if !state.Draft.Set(state.Field, text) {
		return Reply{}, fmt.Errorf("profile creation is at unknown step %q", state.Field)
	}
	return m.advanceCreation(ctx, userID, state)
}

func (m *Machine) advanceCreation(ctx context.Context, userID int64, state State) (Reply, error) {
	next, ok := nextStep(state.Field)
	if ok {
		state.Field = next
		if err := m.save(ctx, userID, state); err != nil {
			return Reply{}, err
		}
		return stepReply(state.Mode, next), nil
	}

	profile, err := m.profiles.Create(ctx, userID, state.Username, state.Draft)
	if err != nil {
		return m.fail(ctx, userID, state, err)
	}
	m.finish(ctx, userID)

	return Reply{Kind: ReplyDone, Mode: state.Mode, Profile: &profile}, nil
}

func (m *Machine) editText(ctx context.Context, userID int64, state State, text string) (Reply, error) {
	if !validate.Required(text) {
		return Reply{Kind: ReplyInvalid, Mode: state.Mode, Field: state.Field}, nil
	}

	if err := m.profiles.UpdateField(ctx, userID, state.Field, text); err != nil {
		return m.fail(ctx, userID, state, err)
	}
	m.finish(ctx, userID)

	return Reply{Kind: ReplyDone, Mode: state.Mode, Field: state.Field}, nil
}

func (m *Machine) reportIDText(ctx context.Context, userID int64, state State, text string) (Reply, error) {
	targetID, ok := validate.UserID(text)
	if !ok || targetID == userID {
		return Reply{Kind: ReplyInvalid, Mode: state.Mode}, nil
	}

	state.Mode = enums.ModeAwaitingReportReason
	state.TargetID = targetID
	if err := m.save(ctx, userID, state); err != nil {
		return Reply{}, err
	}

	return Reply{Kind: ReplyPrompt, Mode: state.Mode, TargetID: targetID}, nil
}

func (m *Machine) reportReasonText(ctx context.Context, userID int64, state State, text string) (Reply, error) {
	if !validate.Required(text) {
		return Reply{Kind: ReplyInvalid, Mode: state.Mode, TargetID: state.TargetID}, nil
	}

	outcome, err := m.reports.Submit(ctx, userID, state.TargetID, text)
	if err != nil {
		return m.fail(ctx, userID, state, err)
	}
	m.finish(ctx, userID)

	return Reply{Kind: ReplyDone, Mode: state.Mode, TargetID: state.TargetID, Report: &outcome}, nil
}

func (m *Machine) moderationReasonText(ctx context.Context, adminID int64, state State, text string) (Reply, error) {
	if !validate.Required(text) {
		return Reply{Kind: ReplyInvalid, Mode: state.Mode, TargetID: state.TargetID}, nil
	}

	result, err := m.moderation.DecideProfile(ctx, adminID, state.TargetID, state.Decision, text)
	if err != nil {
		return m.fail(ctx, adminID, state, err)
	}
	m.finish(ctx, adminID)

	return Reply{Kind: ReplyDone, Mode: state.Mode, TargetID: state.TargetID, Decision: &result}, nil
}

// fail decides what happens to the dialogue when the terminal action failed.
// Validation errors keep the step, errors that make the dialogue pointless end
// it, and anything else (store failures) leaves the state untouched.
func (m *Machine) fail(ctx context.Context, userID int64, state State, err error) (Reply, error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return Reply{Kind: ReplyInvalid, Mode: state.Mode, Field: state.Field, TargetID: state.TargetID}, nil
	case errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrForbidden),
		errors.Is(err, apperr.ErrDuplicate),
		errors.Is(err, apperr.ErrRateLimited):
		if clearErr := m.store.Clear(ctx, userID); clearErr != nil {
			m.logger.Warn("clear conversation state after failure", zap.Int64("user_id", userID), zap.Error(clearErr))
		}
		return Reply{}, err
	default:
		return Reply{}, err
	}
}

func (m *Machine) save(ctx context.Context, userID int64, state State) error {
	state.UpdatedAt = m.now().UTC()
	if err := m.store.Save(ctx, userID, state); err != nil {
		return fmt.Errorf("save conversation state: %w", err)
	}
	return nil
}

// finish ends a dialogue whose terminal action already succeeded. A failure
// to clear is only logged: the action must not be reported as failed.
func (m *Machine) finish(ctx context.Context, userID int64) {
	if err := m.store.Clear(ctx, userID); err != nil {
		m.logger.Warn("clear finished conversation", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func stepReply(mode enums.ConversationMode, field enums.ProfileField) Reply {
	kind := ReplyPrompt
	if field.IsChoice() {
		kind = ReplyChoice
	}
	return Reply{Kind: kind, Mode: mode, Field: field}
}

func nextStep(current enums.ProfileField) (enums.ProfileField, bool) {
	for i, step := range enums.CreationSteps {
		if step == current && i+1 < len(enums.CreationSteps) {
			return enums.CreationSteps[i+1], true
		}
	}
	return "", false
}

func validChoice(field enums.ProfileField, value string) bool {
	switch field {
	case enums.FieldGender:
		return enums.Gender(value).Valid()
	case enums.FieldSearchGender:
		return enums.SearchGender(value).Valid()
	default:
		return false
	}
}
