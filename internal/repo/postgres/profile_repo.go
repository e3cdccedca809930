package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileBanned   = errors.New("profile is banned")
)

const profileColumns = `
	p.user_id,
	p.username,
	p.first_name,
	p.last_name,
	p.class_name,
	p.interests,
	p.favorite_subject,
	p.hobby,
	p.dream,
	p.about_me,
	p.gender,
	p.search_gender,
	p.photo_file_id,
	p.photo_object_key,
	p.status,
	p.reported_count,
	p.registered_at,
	p.last_reported,
	p.skipped_at,
	p.updated_at`

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Get(ctx context.Context, userID int64) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	profile, err := scanProfile(r.pool.QueryRow(ctx, `
SELECT`+profileColumns+`
FROM profiles p
WHERE p.user_id = $1
`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return profile, nil
}

// Save inserts a profile or replaces the fields of an existing one. Either
// way the profile goes (back) to review. A banned profile is left untouched
// and ErrProfileBanned is returned.
func (r *ProfileRepo) Save(ctx context.Context, p model.Profile) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}
	if p.UserID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid profile payload")
	}

	saved, err := scanProfile(r.pool.QueryRow(ctx, `
INSERT INTO profiles AS p (
	user_id,
	username,
	first_name,
	last_name,
	class_name,
	interests,
	favorite_subject,
	hobby,
	dream,
	about_me,
	gender,
	search_gender,
	status,
	registered_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'pending_review', NOW(), NOW())
ON CONFLICT (user_id) DO UPDATE SET
	username = EXCLUDED.username,
	first_name = EXCLUDED.first_name,
	last_name = EXCLUDED.last_name,
	class_name = EXCLUDED.class_name,
	interests = EXCLUDED.interests,
	favorite_subject = EXCLUDED.favorite_subject,
	hobby = EXCLUDED.hobby,
	dream = EXCLUDED.dream,
	about_me = EXCLUDED.about_me,
	gender = EXCLUDED.gender,
	search_gender = EXCLUDED.search_gender,
	status = 'pending_review',
	registered_at = NOW(),
	skipped_at = NULL,
	updated_at = NOW()
WHERE p.status <> 'banned'
RETURNING`+profileColumns,
		p.UserID,
		p.Username,
		p.FirstName,
		p.LastName,
		p.Class,
		p.Interests,
		p.FavoriteSubject,
		p.Hobby,
		p.Dream,
		p.AboutMe,
		string(p.Gender),
		string(p.SearchGender),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileBanned
		}
		return model.Profile{}, fmt.Errorf("save profile: %w", err)
	}

	return saved, nil
}

func (r *ProfileRepo) UpdateField(ctx context.Context, userID int64, field enums.ProfileField, value string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	column, ok := profileFieldColumn(field)
	if !ok {
		return fmt.Errorf("unknown profile field %q", field)
	}

	result, err := r.pool.Exec(ctx, `
UPDATE profiles
SET `+column+` = $2, updated_at = NOW()
WHERE user_id = $1
`, userID, value)
	if err != nil {
		return fmt.Errorf("update profile %s: %w", field, err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *ProfileRepo) TouchUsername(ctx context.Context, userID int64, username string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE profiles
SET username = $2
WHERE user_id = $1 AND username IS DISTINCT FROM $2
`, userID, username); err != nil {
		return fmt.Errorf("touch username: %w", err)
	}

	return nil
}

// SetPhoto stores the new photo and returns the archive key it replaced.
func (r *ProfileRepo) SetPhoto(ctx context.Context, userID int64, fileID, objectKey string) (string, error) {
	if r.pool == nil {
		return "", fmt.Errorf("postgres pool is nil")
	}

	var previous string
	err := r.pool.QueryRow(ctx, `
WITH old AS (
	SELECT user_id, photo_object_key
	FROM profiles
	WHERE user_id = $1
	FOR UPDATE
)
UPDATE profiles p
SET photo_file_id = $2, photo_object_key = $3, updated_at = NOW()
FROM old
WHERE p.user_id = old.user_id
RETURNING old.photo_object_key
`, userID, fileID, objectKey).Scan(&previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrProfileNotFound
		}
		return "", fmt.Errorf("set profile photo: %w", err)
	}

	return previous, nil
}

// Delete removes the profile; likes, matches and reports go with it through
// ON DELETE CASCADE. The archived photo key is returned for cleanup.
func (r *ProfileRepo) Delete(ctx context.Context, userID int64) (string, error) {
	if r.pool == nil {
		return "", fmt.Errorf("postgres pool is nil")
	}

	var photoKey string
	err := r.pool.QueryRow(ctx, `
DELETE FROM profiles
WHERE user_id = $1
RETURNING photo_object_key
`, userID).Scan(&photoKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrProfileNotFound
		}
		return "", fmt.Errorf("delete profile: %w", err)
	}

	return photoKey, nil
}

// RandomCandidate picks one approved profile uniformly at random among those
// userID has not liked yet. An empty gender disables the gender filter.
func (r *ProfileRepo) RandomCandidate(ctx context.Context, userID int64, gender enums.Gender) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	profile, err := scanProfile(r.pool.QueryRow(ctx, `
SELECT`+profileColumns+`
FROM profiles p
WHERE
	p.user_id <> $1
	AND p.status = 'approved'
	AND ($2::text = '' OR p.gender = $2::text)
	AND NOT EXISTS (
		SELECT 1
		FROM likes l
		WHERE l.from_user_id = $1 AND l.to_user_id = p.user_id
	)
ORDER BY random()
LIMIT 1
`, userID, string(gender)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("pick candidate: %w", err)
	}

	return profile, nil
}

func profileFieldColumn(field enums.ProfileField) (string, bool) {
	switch field {
	case enums.FieldFirstName:
		return "first_name", true
	case enums.FieldLastName:
		return "last_name", true
	case enums.FieldClass:
		return "class_name", true
	case enums.FieldGender:
		return "gender", true
	case enums.FieldSearchGender:
		return "search_gender", true
	case enums.FieldInterests:
		return "interests", true
	case enums.FieldFavoriteSubject:
		return "favorite_subject", true
	case enums.FieldHobby:
		return "hobby", true
	case enums.FieldDream:
		return "dream", true
	case enums.FieldAboutMe:
		return "about_me", true
	default:
		return "", false
	}
}

func scanProfile(row pgx.Row) (model.Profile, error) {
	var (
		p            model.Profile
		gender       string
		searchGender string
		status       string
	)
	if err := row.Scan(
		&p.UserID,
		&p.Username,
		&p.FirstName,
		&p.LastName,
		&p.Class,
		&p.Interests,
		&p.FavoriteSubject,
		&p.Hobby,
		&p.Dream,
		&p.AboutMe,
		&gender,
		&searchGender,
		&p.PhotoFileID,
		&p.PhotoObjectKey,
		&status,
		&p.ReportedCount,
		&p.RegisteredAt,
		&p.LastReported,
		&p.SkippedAt,
		&p.UpdatedAt,
	); err != nil {
		return model.Profile{}, err
	}

	p.Gender = enums.Gender(gender)
	p.SearchGender = enums.SearchGender(searchGender)
	p.Status = enums.ProfileStatus(status)
	return p, nil
}
