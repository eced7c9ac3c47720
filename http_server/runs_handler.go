package http_server

import (
	"net/http"
	"strconv"

	"github.com/danthegoodman1/hitmerge/utils"
)

const defaultRunsLimit = 20

func (s *HTTPServer) ListRunsHandler(c *CustomContext) error {
	limit := defaultRunsLimit
	if l := c.QueryParam("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
		}
		limit = min(parsed, 1000)
	}

	runs, err := s.metaStore.ListRuns(c.Request().Context(), limit)
	if err != nil {
		return c.InternalError(err, "error listing runs")
	}

	return c.JSON(http.StatusOK, utils.ArrayOrEmpty(runs))
}
