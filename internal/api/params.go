package api

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/teresa-solution/rental-management-service/internal/model"
	"github.com/teresa-solution/rental-management-service/internal/store"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", model.ErrValidation, c.Param("id"))
	}
	return id, nil
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", model.ErrValidation, name)
	}
	return n, nil
}

// pageOf reads skip and limit. A zero limit means def; limits are capped.
func pageOf(c *gin.Context, def int) (store.Page, error) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return store.Page{}, err
	}
	limit, err := queryInt(c, "limit", def)
	if err != nil {
		return store.Page{}, err
	}
	if limit == 0 {
		limit = def
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return store.Page{Offset: skip, Limit: limit}, nil
}

func bind(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", model.ErrValidation, err)
	}
	return nil
}
