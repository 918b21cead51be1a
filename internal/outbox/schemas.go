package outbox

const workoutLoggedSchema = `{
  "type": "object",
  "title": "WorkoutLogged",
  "properties": {
    "log_id": {"type": "string"},
    "user_id": {"type": "string"},
    "workout_title": {"type": "string"},
    "duration_min": {"type": "integer"},
    "calories": {"type": "integer"},
    "logged_at": {"type": "string", "format": "date-time"}
  },
  "required": ["log_id", "user_id", "workout_title", "duration_min", "calories", "logged_at"],
  "additionalProperties": false
}`

const badgeUnlockedSchema = `{
  "type": "object",
  "title": "BadgeUnlocked",
  "properties": {
    "user_id": {"type": "string"},
    "badge": {"type": "string"},
    "unlocked_at": {"type": "string", "format": "date-time"}
  },
  "required": ["user_id", "badge", "unlocked_at"],
  "additionalProperties": false
}`

const challengeToggledSchema = `{
  "type": "object",
  "title": "ChallengeToggled",
  "properties": {
    "user_id": {"type": "string"},
    "challenge_id": {"type": "string"},
    "joined": {"type": "boolean"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["user_id", "challenge_id", "joined", "occurred_at"],
  "additionalProperties": false
}`

const postCreatedSchema = `{
  "type": "object",
  "title": "PostCreated",
  "properties": {
    "post_id": {"type": "string"},
    "author_id": {"type": "string"},
    "category": {"type": "string"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["post_id", "author_id", "category", "occurred_at"],
  "additionalProperties": false
}`
