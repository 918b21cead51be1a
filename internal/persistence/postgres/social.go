package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Z-testacc/ActiLeap/internal/domain"
	"github.com/Z-testacc/ActiLeap/internal/events"
)

// CreatePost inserts the post and bumps the author's post count in the
// same transaction, unlocking top-contributor at the threshold.
func (r *Repository) CreatePost(ctx context.Context, post domain.Post) (*domain.Badge, error) {
	now := r.clock().UTC()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	profile, err := lockProfile(ctx, tx, post.AuthorID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		err = domain.ErrProfileNotFound
		return nil, err
	}

	const insertPost = `INSERT INTO posts (post_id, author_id, author_name, author_photo_url, content, category, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	if _, err = tx.Exec(ctx, insertPost,
		post.ID, post.AuthorID, post.AuthorName, post.AuthorPhotoURL, post.Content, string(post.Category), now,
	); err != nil {
		return nil, err
	}

	var unlocked *domain.Badge
	newBadges := []string{}
	if profile.PostCount+1 >= domain.TopContributorPostCount && !profile.HasBadge(domain.BadgeTopContributor) {
		badge := domain.BadgeTopContributor
		unlocked = &badge
		newBadges = append(newBadges, string(badge))
	}

	const bump = `UPDATE user_profiles SET
        post_count = post_count + 1,
        unlocked_badges = unlocked_badges || $2::text[],
        updated_at = $3
        WHERE user_id = $1`
	if _, err = tx.Exec(ctx, bump, post.AuthorID, newBadges, now); err != nil {
		return nil, err
	}

	if err = r.insertOutbox(ctx, tx, "post.created", post.AuthorID, post.ID, events.PostCreated{
		PostID:     post.ID,
		AuthorID:   post.AuthorID,
		Category:   string(post.Category),
		OccurredAt: now,
	}); err != nil {
		return nil, err
	}
	if unlocked != nil {
		if err = r.insertOutbox(ctx, tx, "badge.unlocked", post.AuthorID, post.AuthorID+":"+string(*unlocked), events.BadgeUnlocked{
			UserID:     post.AuthorID,
			Badge:      string(*unlocked),
			UnlockedAt: now,
		}); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return unlocked, nil
}

// DeletePost removes a post; its comments go with it.
func (r *Repository) DeletePost(ctx context.Context, postID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE post_id=$1`, postID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

// ToggleLike flips the caller's membership in the post's liked set. The
// direction is derived from stored state under a row lock, so a double
// send lands on the intended final state instead of double counting.
func (r *Repository) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	var likedBy []string
	err = tx.QueryRow(ctx, `SELECT liked_by FROM posts WHERE post_id=$1 FOR UPDATE`, postID).Scan(&likedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = domain.ErrPostNotFound
		}
		return false, err
	}

	liked := !contains(likedBy, userID)
	if liked {
		_, err = tx.Exec(ctx,
			`UPDATE posts SET liked_by = array_append(liked_by, $2), like_count = like_count + 1 WHERE post_id=$1`,
			postID, userID)
	} else {
		_, err = tx.Exec(ctx,
			`UPDATE posts SET liked_by = array_remove(liked_by, $2), like_count = GREATEST(like_count - 1, 0) WHERE post_id=$1`,
			postID, userID)
	}
	if err != nil {
		return false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return false, err
	}
	return liked, nil
}

// AddComment inserts the comment and bumps the post's comment count
// together.
func (r *Repository) AddComment(ctx context.Context, comment domain.Comment) error {
	now := r.clock().UTC()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	var exists bool
	err = tx.QueryRow(ctx, `SELECT true FROM posts WHERE post_id=$1 FOR UPDATE`, comment.PostID).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = domain.ErrPostNotFound
		}
		return err
	}

	const insert = `INSERT INTO post_comments (comment_id, post_id, author_id, author_name, author_photo_url, content, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	if _, err = tx.Exec(ctx, insert,
		comment.ID, comment.PostID, comment.AuthorID, comment.AuthorName, comment.AuthorPhotoURL, comment.Content, now,
	); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `UPDATE posts SET comment_count = comment_count + 1 WHERE post_id=$1`, comment.PostID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DeleteComment removes a comment and decrements the post's count.
func (r *Repository) DeleteComment(ctx context.Context, postID, commentID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `DELETE FROM post_comments WHERE post_id=$1 AND comment_id=$2`, postID, commentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		if _, err = tx.Exec(ctx,
			`UPDATE posts SET comment_count = GREATEST(comment_count - 1, 0) WHERE post_id=$1`, postID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Posts returns the newest posts with their comments attached.
func (r *Repository) Posts(ctx context.Context, limit int) ([]domain.Post, error) {
	const query = `SELECT post_id, author_id, author_name, author_photo_url, content, category, created_at, like_count, comment_count, liked_by
        FROM posts ORDER BY created_at DESC, post_id DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]domain.Post, 0, limit)
	for rows.Next() {
		var p domain.Post
		var category string
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.AuthorPhotoURL, &p.Content, &category, &p.CreatedAt, &p.LikeCount, &p.CommentCount, &p.LikedBy); err != nil {
			return nil, fmt.Errorf("%w: post: %v", domain.ErrCorruptRecord, err)
		}
		p.Category = domain.PostCategory(category)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range posts {
		comments, err := r.comments(ctx, posts[i].ID)
		if err != nil {
			return nil, err
		}
		posts[i].Comments = comments
	}
	return posts, nil
}

func (r *Repository) comments(ctx context.Context, postID string) ([]domain.Comment, error) {
	const query = `SELECT comment_id, post_id, author_id, author_name, author_photo_url, content, created_at
        FROM post_comments WHERE post_id=$1 ORDER BY created_at ASC, comment_id ASC`
	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorName, &c.AuthorPhotoURL, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: comment: %v", domain.ErrCorruptRecord, err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// CreateChallenge inserts the challenge with its author as the first
// participant and records the membership on the author's profile.
func (r *Repository) CreateChallenge(ctx context.Context, challenge domain.Challenge) error {
	now := r.clock().UTC()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	profile, err := lockProfile(ctx, tx, challenge.AuthorID)
	if err != nil {
		return err
	}
	if profile == nil {
		err = domain.ErrProfileNotFound
		return err
	}

	const insert = `INSERT INTO challenges (challenge_id, author_id, title, description, challenge_type, goal_value, goal_unit, participant_count, participants, created_at, end_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7,1,$8,$9,$10)`
	if _, err = tx.Exec(ctx, insert,
		challenge.ID, challenge.AuthorID, challenge.Title, challenge.Description,
		string(challenge.Type), challenge.GoalValue, challenge.GoalUnit,
		[]string{challenge.AuthorID}, now, nullTime(challenge.EndDate),
	); err != nil {
		return err
	}

	if !contains(profile.JoinedChallenges, challenge.ID) {
		if _, err = tx.Exec(ctx,
			`UPDATE user_profiles SET joined_challenges = array_append(joined_challenges, $2), updated_at = $3 WHERE user_id=$1`,
			challenge.AuthorID, challenge.ID, now); err != nil {
			return err
		}
	}

	if err = r.insertOutbox(ctx, tx, "challenge.toggled", challenge.AuthorID, challenge.ID+":"+challenge.AuthorID, events.ChallengeToggled{
		ChallengeID: challenge.ID,
		UserID:      challenge.AuthorID,
		Joined:      true,
		OccurredAt:  now,
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ToggleChallenge flips the caller's participation. Joining awards XP
// and may unlock the first-challenge badge; leaving reverses only the
// membership, never the XP.
func (r *Repository) ToggleChallenge(ctx context.Context, userID, challengeID string) (result domain.ChallengeToggle, err error) {
	now := r.clock().UTC()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.ChallengeToggle{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	profile, err := lockProfile(ctx, tx, userID)
	if err != nil {
		return domain.ChallengeToggle{}, err
	}
	if profile == nil {
		err = domain.ErrProfileNotFound
		return domain.ChallengeToggle{}, err
	}

	var participants []string
	err = tx.QueryRow(ctx, `SELECT participants FROM challenges WHERE challenge_id=$1 FOR UPDATE`, challengeID).Scan(&participants)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = domain.ErrChallengeNotFound
		}
		return domain.ChallengeToggle{}, err
	}

	result.Joined = !contains(participants, userID)
	if result.Joined {
		newBadges := []string{}
		if !profile.HasBadge(domain.BadgeFirstChallenge) {
			badge := domain.BadgeFirstChallenge
			result.BadgeUnlocked = &badge
			newBadges = append(newBadges, string(badge))
		}

		const joinProfile = `UPDATE user_profiles SET
            xp = xp + $2,
            joined_challenges = array_append(joined_challenges, $3),
            unlocked_badges = unlocked_badges || $4::text[],
            updated_at = $5
            WHERE user_id = $1`
		if _, err = tx.Exec(ctx, joinProfile, userID, domain.XPPerChallengeJoin, challengeID, newBadges, now); err != nil {
			return domain.ChallengeToggle{}, err
		}
		if _, err = tx.Exec(ctx,
			`UPDATE challenges SET participants = array_append(participants, $2), participant_count = participant_count + 1 WHERE challenge_id=$1`,
			challengeID, userID); err != nil {
			return domain.ChallengeToggle{}, err
		}
	} else {
		if _, err = tx.Exec(ctx,
			`UPDATE user_profiles SET joined_challenges = array_remove(joined_challenges, $2), updated_at = $3 WHERE user_id=$1`,
			userID, challengeID, now); err != nil {
			return domain.ChallengeToggle{}, err
		}
		if _, err = tx.Exec(ctx,
			`UPDATE challenges SET participants = array_remove(participants, $2), participant_count = GREATEST(participant_count - 1, 0) WHERE challenge_id=$1`,
			challengeID, userID); err != nil {
			return domain.ChallengeToggle{}, err
		}
	}

	if err = r.insertOutbox(ctx, tx, "challenge.toggled", userID, fmt.Sprintf("%s:%s:%d", challengeID, userID, now.UnixNano()), events.ChallengeToggled{
		ChallengeID: challengeID,
		UserID:      userID,
		Joined:      result.Joined,
		OccurredAt:  now,
	}); err != nil {
		return domain.ChallengeToggle{}, err
	}
	if result.BadgeUnlocked != nil {
		if err = r.insertOutbox(ctx, tx, "badge.unlocked", userID, userID+":"+string(*result.BadgeUnlocked), events.BadgeUnlocked{
			UserID:     userID,
			Badge:      string(*result.BadgeUnlocked),
			UnlockedAt: now,
		}); err != nil {
			return domain.ChallengeToggle{}, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return domain.ChallengeToggle{}, err
	}
	return result, nil
}

// Challenges lists challenges newest first.
func (r *Repository) Challenges(ctx context.Context) ([]domain.Challenge, error) {
	const query = `SELECT challenge_id, author_id, title, description, challenge_type, goal_value, goal_unit, participant_count, participants, created_at, end_date
        FROM challenges ORDER BY created_at DESC, challenge_id DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var challenges []domain.Challenge
	for rows.Next() {
		var c domain.Challenge
		var challengeType string
		var endDate *time.Time
		if err := rows.Scan(&c.ID, &c.AuthorID, &c.Title, &c.Description, &challengeType, &c.GoalValue, &c.GoalUnit, &c.ParticipantCount, &c.Participants, &c.CreatedAt, &endDate); err != nil {
			return nil, fmt.Errorf("%w: challenge: %v", domain.ErrCorruptRecord, err)
		}
		c.Type = domain.ChallengeType(challengeType)
		c.EndDate = endDate
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}

// ToggleGroup flips the caller's group membership, direction derived
// from the profile's joined set under lock.
func (r *Repository) ToggleGroup(ctx context.Context, userID, groupID string) (joined bool, err error) {
	now := r.clock().UTC()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	profile, err := lockProfile(ctx, tx, userID)
	if err != nil {
		return false, err
	}
	if profile == nil {
		err = domain.ErrProfileNotFound
		return false, err
	}

	var exists bool
	err = tx.QueryRow(ctx, `SELECT true FROM groups WHERE group_id=$1 FOR UPDATE`, groupID).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = domain.ErrGroupNotFound
		}
		return false, err
	}

	joined = !contains(profile.JoinedGroups, groupID)
	if joined {
		if _, err = tx.Exec(ctx,
			`UPDATE user_profiles SET joined_groups = array_append(joined_groups, $2), updated_at = $3 WHERE user_id=$1`,
			userID, groupID, now); err != nil {
			return false, err
		}
		if _, err = tx.Exec(ctx,
			`UPDATE groups SET member_count = member_count + 1 WHERE group_id=$1`, groupID); err != nil {
			return false, err
		}
	} else {
		if _, err = tx.Exec(ctx,
			`UPDATE user_profiles SET joined_groups = array_remove(joined_groups, $2), updated_at = $3 WHERE user_id=$1`,
			userID, groupID, now); err != nil {
			return false, err
		}
		if _, err = tx.Exec(ctx,
			`UPDATE groups SET member_count = GREATEST(member_count - 1, 0) WHERE group_id=$1`, groupID); err != nil {
			return false, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return false, err
	}
	return joined, nil
}

// Groups lists groups by name.
func (r *Repository) Groups(ctx context.Context) ([]domain.Group, error) {
	const query = `SELECT group_id, name, description, member_count FROM groups ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.MemberCount); err != nil {
			return nil, fmt.Errorf("%w: group: %v", domain.ErrCorruptRecord, err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
