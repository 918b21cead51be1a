package domain

import "time"

// PostCategory buckets community posts for filtering.
type PostCategory string

const (
	PostCategoryGeneral   PostCategory = "General"
	PostCategoryNutrition PostCategory = "Nutrition"
	PostCategoryCardio    PostCategory = "Cardio"
	PostCategoryStrength  PostCategory = "Strength"
	PostCategoryRecovery  PostCategory = "Recovery"
)

// Valid reports whether the category is one of the accepted values.
func (c PostCategory) Valid() bool {
	switch c {
	case PostCategoryGeneral, PostCategoryNutrition, PostCategoryCardio, PostCategoryStrength, PostCategoryRecovery:
		return true
	}
	return false
}

// Post is a community post with denormalized author fields and
// transactionally maintained counters.
type Post struct {
	ID             string
	AuthorID       string
	AuthorName     string
	AuthorPhotoURL string
	Content        string
	Category       PostCategory
	CreatedAt      time.Time
	LikeCount      int
	CommentCount   int
	LikedBy        []string
	Comments       []Comment
}

// Comment belongs to a post; creating or deleting one adjusts the
// post's CommentCount in the same transaction.
type Comment struct {
	ID             string
	PostID         string
	AuthorID       string
	AuthorName     string
	AuthorPhotoURL string
	Content        string
	CreatedAt      time.Time
}

// ChallengeType distinguishes deadline challenges from performance goals.
type ChallengeType string

const (
	ChallengeTimeBound        ChallengeType = "time-bound"
	ChallengePerformanceBased ChallengeType = "performance-based"
)

// Challenge is a community challenge users join and leave.
type Challenge struct {
	ID               string
	AuthorID         string
	Title            string
	Description      string
	Type             ChallengeType
	GoalValue        int
	GoalUnit         string
	ParticipantCount int
	Participants     []string
	CreatedAt        time.Time
	EndDate          *time.Time
}

// Group is a workout group with a membership counter.
type Group struct {
	ID          string
	Name        string
	Description string
	MemberCount int
}
