package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Z-testacc/ActiLeap/internal/auth"
	"github.com/Z-testacc/ActiLeap/internal/domain"
)

func (h *Handler) posts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createPost(w, r)
	case http.MethodGet:
		h.listPosts(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) postByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/posts/")
	parts := splitPath(rest)

	switch {
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.deletePost(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "likes" && r.Method == http.MethodPost:
		h.toggleLike(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "comments" && r.Method == http.MethodPost:
		h.addComment(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "comments" && r.Method == http.MethodDelete:
		h.deleteComment(w, r, parts[0], parts[2])
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown route")
	}
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeSocialWrite)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	result, err := h.service.CreatePost(r.Context(), domain.CreatePostInput{
		AuthorID:       claims.Subject,
		AuthorName:     req.AuthorName,
		AuthorPhotoURL: req.AuthorPhotoURL,
		Content:        req.Content,
		Category:       domain.PostCategory(req.Category),
	})
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	resp := CreatePostResponse{
		PostID:    result.PostID,
		Persisted: result.Persisted,
	}
	if result.BadgeUnlocked != nil {
		resp.BadgeUnlocked = string(*result.BadgeUnlocked)
	}

	status := http.StatusCreated
	if !result.Persisted {
		status = http.StatusAccepted
	}
	writeJSON(w, status, resp)
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireScope(w, r, auth.ScopeSocialRead, auth.ScopeSocialWrite); !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	posts, err := h.service.Posts(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]PostView, 0, len(posts))
	for _, post := range posts {
		items = append(items, toPostView(post))
	}
	writeJSON(w, http.StatusOK, ListPostsResponse{Items: items})
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request, postID string) {
	if _, ok := requireScope(w, r, auth.ScopeSocialWrite); !ok {
		return
	}

	h.service.DeletePost(r.Context(), postID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toggleLike(w http.ResponseWriter, r *http.Request, postID string) {
	claims, ok := requireScope(w, r, auth.ScopeSocialWrite)
	if !ok {
		return
	}

	result, err := h.service.ToggleLike(r.Context(), postID, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ToggleLikeResponse{Liked: result.Liked, Persisted: result.Persisted})
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request, postID string) {
	claims, ok := requireScope(w, r, auth.ScopeSocialWrite)
	if !ok {
		return
	}

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "content is required")
		return
	}

	err := h.service.AddComment(r.Context(), domain.AddCommentInput{
		PostID:         postID,
		AuthorID:       claims.Subject,
		AuthorName:     req.AuthorName,
		AuthorPhotoURL: req.AuthorPhotoURL,
		Content:        req.Content,
	})
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "post not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request, postID, commentID string) {
	if _, ok := requireScope(w, r, auth.ScopeSocialWrite); !ok {
		return
	}

	h.service.DeleteComment(r.Context(), postID, commentID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) challenges(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createChallenge(w, r)
	case http.MethodGet:
		h.listChallenges(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) challengeByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/challenges/")
	parts := splitPath(rest)

	switch {
	case len(parts) == 2 && parts[1] == "participation" && r.Method == http.MethodPost:
		h.toggleChallenge(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown route")
	}
}

func (h *Handler) createChallenge(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeSocialWrite)
	if !ok {
		return
	}

	var req CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	challengeID, err := h.service.CreateChallenge(r.Context(), domain.CreateChallengeInput{
		AuthorID:    claims.Subject,
		Title:       req.Title,
		Description: req.Description,
		Type:        domain.ChallengeType(req.Type),
		GoalValue:   req.GoalValue,
		GoalUnit:    req.GoalUnit,
		EndDate:     req.EndDate,
	})
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, CreateChallengeResponse{ChallengeID: challengeID})
}

func (h *Handler) listChallenges(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireScope(w, r, auth.ScopeSocialRead, auth.ScopeSocialWrite); !ok {
		return
	}

	challenges, err := h.service.Challenges(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]ChallengeView, 0, len(challenges))
	for _, challenge := range challenges {
		items = append(items, toChallengeView(challenge))
	}
	writeJSON(w, http.StatusOK, ListChallengesResponse{Items: items})
}

func (h *Handler) toggleChallenge(w http.ResponseWriter, r *http.Request, challengeID string) {
	claims, ok := requireScope(w, r, auth.ScopeSocialWrite)
	if !ok {
		return
	}

	result, err := h.service.ToggleChallenge(r.Context(), claims.Subject, challengeID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrChallengeNotFound):
			writeError(w, http.StatusNotFound, "not_found", "challenge not found")
		case errors.Is(err, domain.ErrProfileNotFound):
			writeError(w, http.StatusNotFound, "not_found", "profile not found")
		default:
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		}
		return
	}

	resp := ToggleChallengeResponse{Joined: result.Joined}
	if result.BadgeUnlocked != nil {
		resp.BadgeUnlocked = string(*result.BadgeUnlocked)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) groups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := requireScope(w, r, auth.ScopeSocialRead, auth.ScopeSocialWrite); !ok {
		return
	}

	groups, err := h.service.Groups(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]GroupView, 0, len(groups))
	for _, group := range groups {
		items = append(items, GroupView(group))
	}
	writeJSON(w, http.StatusOK, ListGroupsResponse{Items: items})
}

func (h *Handler) groupByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/groups/")
	parts := splitPath(rest)

	switch {
	case len(parts) == 2 && parts[1] == "membership" && r.Method == http.MethodPost:
		h.toggleGroup(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown route")
	}
}

func (h *Handler) toggleGroup(w http.ResponseWriter, r *http.Request, groupID string) {
	claims, ok := requireScope(w, r, auth.ScopeSocialWrite)
	if !ok {
		return
	}

	result, err := h.service.ToggleGroup(r.Context(), claims.Subject, groupID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrGroupNotFound):
			writeError(w, http.StatusNotFound, "not_found", "group not found")
		case errors.Is(err, domain.ErrProfileNotFound):
			writeError(w, http.StatusNotFound, "not_found", "profile not found")
		default:
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, ToggleGroupResponse{Joined: result.Joined, Persisted: result.Persisted})
}

// CreatePostRequest is the payload for POST /v1/posts.
type CreatePostRequest struct {
	AuthorName     string `json:"author_name"`
	AuthorPhotoURL string `json:"author_photo_url"`
	Content        string `json:"content"`
	Category       string `json:"category"`
}

// Validate ensures request correctness.
func (r CreatePostRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return errors.New("content is required")
	}
	if r.Category != "" && !domain.PostCategory(r.Category).Valid() {
		return errors.New("unknown category")
	}
	return nil
}

// CreatePostResponse describes the response for post creation.
type CreatePostResponse struct {
	PostID        string `json:"post_id,omitempty"`
	BadgeUnlocked string `json:"badge_unlocked,omitempty"`
	Persisted     bool   `json:"persisted"`
}

// ToggleLikeResponse reports the like state after a toggle.
type ToggleLikeResponse struct {
	Liked     bool `json:"liked"`
	Persisted bool `json:"persisted"`
}

// AddCommentRequest is the payload for POST /v1/posts/{id}/comments.
type AddCommentRequest struct {
	AuthorName     string `json:"author_name"`
	AuthorPhotoURL string `json:"author_photo_url"`
	Content        string `json:"content"`
}

// CommentView exposes one comment.
type CommentView struct {
	CommentID      string    `json:"comment_id"`
	AuthorID       string    `json:"author_id"`
	AuthorName     string    `json:"author_name"`
	AuthorPhotoURL string    `json:"author_photo_url,omitempty"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// PostView exposes one community post with its comments.
type PostView struct {
	PostID         string        `json:"post_id"`
	AuthorID       string        `json:"author_id"`
	AuthorName     string        `json:"author_name"`
	AuthorPhotoURL string        `json:"author_photo_url,omitempty"`
	Content        string        `json:"content"`
	Category       string        `json:"category"`
	CreatedAt      time.Time     `json:"created_at"`
	LikeCount      int           `json:"like_count"`
	CommentCount   int           `json:"comment_count"`
	LikedBy        []string      `json:"liked_by"`
	Comments       []CommentView `json:"comments"`
}

// ListPostsResponse packages the community feed.
type ListPostsResponse struct {
	Items []PostView `json:"items"`
}

// CreateChallengeRequest is the payload for POST /v1/challenges.
type CreateChallengeRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	GoalValue   int        `json:"goal_value"`
	GoalUnit    string     `json:"goal_unit"`
	EndDate     *time.Time `json:"end_date"`
}

// Validate ensures request correctness.
func (r CreateChallengeRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	switch domain.ChallengeType(r.Type) {
	case domain.ChallengeTimeBound, domain.ChallengePerformanceBased:
	default:
		return errors.New("type must be time-bound or performance-based")
	}
	return nil
}

// CreateChallengeResponse describes the create-challenge response.
type CreateChallengeResponse struct {
	ChallengeID string `json:"challenge_id"`
}

// ChallengeView exposes one challenge.
type ChallengeView struct {
	ChallengeID      string     `json:"challenge_id"`
	AuthorID         string     `json:"author_id,omitempty"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Type             string     `json:"type"`
	GoalValue        int        `json:"goal_value"`
	GoalUnit         string     `json:"goal_unit,omitempty"`
	ParticipantCount int        `json:"participant_count"`
	CreatedAt        time.Time  `json:"created_at"`
	EndDate          *time.Time `json:"end_date,omitempty"`
}

// ListChallengesResponse packages challenge listings.
type ListChallengesResponse struct {
	Items []ChallengeView `json:"items"`
}

// ToggleChallengeResponse reports participation after a toggle.
type ToggleChallengeResponse struct {
	Joined        bool   `json:"joined"`
	BadgeUnlocked string `json:"badge_unlocked,omitempty"`
}

// GroupView exposes one workout group.
type GroupView struct {
	ID          string `json:"group_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MemberCount int    `json:"member_count"`
}

// ListGroupsResponse packages group listings.
type ListGroupsResponse struct {
	Items []GroupView `json:"items"`
}

// ToggleGroupResponse reports membership after a toggle.
type ToggleGroupResponse struct {
	Joined    bool `json:"joined"`
	Persisted bool `json:"persisted"`
}

func toPostView(post domain.Post) PostView {
	comments := make([]CommentView, 0, len(post.Comments))
	for _, c := range post.Comments {
		comments = append(comments, CommentView{
			CommentID:      c.ID,
			AuthorID:       c.AuthorID,
			AuthorName:     c.AuthorName,
			AuthorPhotoURL: c.AuthorPhotoURL,
			Content:        c.Content,
			CreatedAt:      c.CreatedAt,
		})
	}

	likedBy := post.LikedBy
	if likedBy == nil {
		likedBy = []string{}
	}

	return PostView{
		PostID:         post.ID,
		AuthorID:       post.AuthorID,
		AuthorName:     post.AuthorName,
		AuthorPhotoURL: post.AuthorPhotoURL,
		Content:        post.Content,
		Category:       string(post.Category),
		CreatedAt:      post.CreatedAt,
		LikeCount:      post.LikeCount,
		CommentCount:   post.CommentCount,
		LikedBy:        likedBy,
		Comments:       comments,
	}
}

func toChallengeView(challenge domain.Challenge) ChallengeView {
	return ChallengeView{
		ChallengeID:      challenge.ID,
		AuthorID:         challenge.AuthorID,
		Title:            challenge.Title,
		Description:      challenge.Description,
		Type:             string(challenge.Type),
		GoalValue:        challenge.GoalValue,
		GoalUnit:         challenge.GoalUnit,
		ParticipantCount: challenge.ParticipantCount,
		CreatedAt:        challenge.CreatedAt,
		EndDate:          challenge.EndDate,
	}
}
