package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/taskhive/engine/internal/models"
	appErr "github.com/taskhive/engine/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityRecorder appends audit entries. Record must run on the same
// transaction as the mutation it describes so that a failed audit write
// rolls the mutation back: at most one entry per logical mutation, never a
// partial pair.
type ActivityRecorder struct{}

func NewActivityRecorder() *ActivityRecorder { return &ActivityRecorder{} }

// Record appends one immutable audit entry. A nil actor makes the call a
// no-op: system-internal writes are intentionally unaudited under this
// policy. When description is empty a default of the form
// "{TargetType} '{title}' was {action}" is generated.
func (r *ActivityRecorder) Record(tx *gorm.DB, actor *models.User, action, targetType, targetID, targetTitle string, delta any, description string) error {
	if actor == nil {
		return nil
	}

	var deltaJSON datatypes.JSON
	if delta != nil {
		b, err := json.Marshal(delta)
		if err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "marshal activity delta failed")
		}
		deltaJSON = datatypes.JSON(b)
	}

	if description == "" {
		description = fmt.Sprintf("%s '%s' was %s", capitalize(targetType), targetTitle, action)
	}

	actorID := actor.ID
	entry := &models.ActivityLog{
		ActorID:     &actorID,
		Action:      action,
		TargetType:  targetType,
		TargetID:    targetID,
		TargetTitle: targetTitle,
		Delta:       deltaJSON,
		Description: description,
	}
	if err := tx.Create(entry).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "append activity failed")
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
