package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/repurpose/internal/store"
)

const maxPageLimit = 100

// pageFromQuery reads skip and limit. A missing or non-positive limit falls
// back to defaultLimit and larger ones are capped at maxPageLimit; negative
// skip is treated as zero.
func pageFromQuery(c echo.Context, defaultLimit int) store.Page {
	skip, _ := strconv.Atoi(c.QueryParam("skip"))
	if skip < 0 {
		skip = 0
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return store.Page{Skip: skip, Limit: limit}
}
