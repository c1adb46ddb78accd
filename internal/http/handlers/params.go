package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/maintenance-planner/internal/pkg/apperr"
)

// uuidParam parses a path parameter. A malformed id can name nothing, so it is NotFound.
func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apperr.NotFound("bad_id", "No record exists for id: %s", raw)
	}
	return id, nil
}
