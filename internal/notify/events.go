package notify

import "time"

const (
	EventBetSettled     = "bet_settled"
	EventJackpotWon     = "jackpot_won"
	EventLevelUp        = "level_up"
	EventBonusGranted   = "bonus_granted"
	EventBonusCompleted = "bonus_completed"
	EventBonusDeleted   = "bonus_deleted"
)

// Event is the envelope pushed to players and operator admins after a
// settlement commits. Delivery is best effort, at most once.
type Event struct {
	Kind       string                 `json:"kind"`
	UserID     string                 `json:"user_id,omitempty"`
	OperatorID string                 `json:"operator_id,omitempty"`
	At         time.Time              `json:"at"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

func NewEvent(kind, userID, operatorID string, data map[string]interface{}) Event {
	return Event{
		Kind:       kind,
		UserID:     userID,
		OperatorID: operatorID,
		At:         time.Now().UTC(),
		Data:       data,
	}
}
