package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/sightreadpro-backend/internal/domain/practice"
	"github.com/yungbote/sightreadpro-backend/internal/platform/apierr"
)

// queryInt returns 0 when name is absent so services apply their default.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.Invalid(name, "must be an integer")
	}
	return n, nil
}

func pathInt(c *gin.Context, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(c.Param(name)))
	if err != nil {
		return 0, apierr.Invalid(name, "must be an integer")
	}
	return n, nil
}

func queryDifficulty(c *gin.Context) types.Difficulty {
	return types.Difficulty(strings.ToLower(strings.TrimSpace(c.Query("difficulty"))))
}
