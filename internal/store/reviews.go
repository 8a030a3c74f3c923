package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Review is one row of daily_reviews, keyed by (user, date).
type Review struct {
	ID            int64     `json:"review_id"`
	UserID        int64     `json:"user_id"`
	ReviewDate    string    `json:"review_date"`
	MorningEnergy *int      `json:"morning_energy"`
	CurrentMood   *string   `json:"current_mood"`
	StressLevel   *int      `json:"stress_level"`
	StressFactors *string   `json:"stress_factors"`
	WellDone1     *string   `json:"well_done_1"`
	WellDone2     *string   `json:"well_done_2"`
	WellDone3     *string   `json:"well_done_3"`
	Improvement   *string   `json:"improvement"`
	Gratitude     *string   `json:"gratitude"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ReviewFields are the writable columns of a review. One review per
// (user, date); writing again replaces the field values.
type ReviewFields struct {
	MorningEnergy *int
	CurrentMood   *string
	StressLevel   *int
	StressFactors *string
	WellDone1     *string
	WellDone2     *string
	WellDone3     *string
	Improvement   *string
	Gratitude     *string
}

// UpsertReview creates or replaces the review for (user, date) and
// reports whether a new row was created.
func (s *Store) UpsertReview(ctx context.Context, userID int64, reviewDate string, f ReviewFields) (*Review, bool, error) {
	now := time.Now().UTC()

	var existingID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT review_id FROM daily_reviews WHERE user_id = ? AND review_date = ?
	`, userID, reviewDate).Scan(&existingID)

	created := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO daily_reviews (
				user_id, review_date, morning_energy, current_mood, stress_level, stress_factors,
				well_done_1, well_done_2, well_done_3, improvement, gratitude, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, userID, reviewDate, nullIntPtr(f.MorningEnergy), nullStringPtr(f.CurrentMood),
			nullIntPtr(f.StressLevel), nullStringPtr(f.StressFactors), nullStringPtr(f.WellDone1),
			nullStringPtr(f.WellDone2), nullStringPtr(f.WellDone3), nullStringPtr(f.Improvement),
			nullStringPtr(f.Gratitude), now, now)
		if err != nil {
			return nil, false, err
		}
		existingID, err = res.LastInsertId()
		if err != nil {
			return nil, false, err
		}
		created = true
	case err != nil:
		return nil, false, err
	default:
		_, err = s.db.ExecContext(ctx, `
			UPDATE daily_reviews
			SET morning_energy = ?, current_mood = ?, stress_level = ?, stress_factors = ?,
				well_done_1 = ?, well_done_2 = ?, well_done_3 = ?, improvement = ?, gratitude = ?,
				updated_at = ?
			WHERE review_id = ?
		`, nullIntPtr(f.MorningEnergy), nullStringPtr(f.CurrentMood), nullIntPtr(f.StressLevel),
			nullStringPtr(f.StressFactors), nullStringPtr(f.WellDone1), nullStringPtr(f.WellDone2),
			nullStringPtr(f.WellDone3), nullStringPtr(f.Improvement), nullStringPtr(f.Gratitude),
			now, existingID)
		if err != nil {
			return nil, false, err
		}
	}

	review, err := s.getReview(ctx, existingID)
	return review, created, err
}

// GetReviewByDate fetches the review for (user, date).
func (s *Store) GetReviewByDate(ctx context.Context, userID int64, reviewDate string) (*Review, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT review_id FROM daily_reviews WHERE user_id = ? AND review_date = ?
	`, userID, reviewDate).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.getReview(ctx, id)
}

func (s *Store) getReview(ctx context.Context, reviewID int64) (*Review, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT review_id, user_id, review_date, morning_energy, current_mood, stress_level,
			stress_factors, well_done_1, well_done_2, well_done_3, improvement, gratitude,
			created_at, updated_at
		FROM daily_reviews WHERE review_id = ?
	`, reviewID)

	var r Review
	var energy, stress sql.NullInt64
	var mood, factors, wd1, wd2, wd3, improvement, gratitude sql.NullString

	err := row.Scan(&r.ID, &r.UserID, &r.ReviewDate, &energy, &mood, &stress, &factors,
		&wd1, &wd2, &wd3, &improvement, &gratitude, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	r.MorningEnergy = intPtr(energy)
	r.CurrentMood = strPtr(mood)
	r.StressLevel = intPtr(stress)
	r.StressFactors = strPtr(factors)
	r.WellDone1 = strPtr(wd1)
	r.WellDone2 = strPtr(wd2)
	r.WellDone3 = strPtr(wd3)
	r.Improvement = strPtr(improvement)
	r.Gratitude = strPtr(gratitude)
	return &r, nil
}

func nullStringPtr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullIntPtr(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}
