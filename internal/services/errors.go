package services

import (
	"errors"
	"time"

	"github.com/washdesk/api/internal/repositories"
)

func isRepoNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

func isRepoConflict(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}

// dayWindow returns the half-open [start, end) interval of the civil day
// containing ts, in ts's location.
func dayWindow(ts time.Time) (time.Time, time.Time) {
	year, month, day := ts.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, ts.Location())
	return start, start.AddDate(0, 0, 1)
}
