package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/oziev02/ThreadDigest/internal/domain"
)

const dateLayout = "2006-01-02"

// DateRange - интервал дат в UTC, обе границы включительно
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange разбирает даты вида YYYY-MM-DD.
// Пустой end означает тот же день, что и start; конец интервала - 23:59:59 последнего дня.
func ParseDateRange(start, end string) (DateRange, error) {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if end == "" {
		end = start
	}

	from, err := time.ParseInLocation(dateLayout, start, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: start date %q must be YYYY-MM-DD", domain.ErrInvalidDateRange, start)
	}
	last, err := time.ParseInLocation(dateLayout, end, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: end date %q must be YYYY-MM-DD", domain.ErrInvalidDateRange, end)
	}
	if from.After(last) {
		return DateRange{}, fmt.Errorf("%w: start date %s is after end date %s", domain.ErrInvalidDateRange, start, end)
	}

	return DateRange{
		From: from,
		To:   last.Add(24*time.Hour - time.Second),
	}, nil
}

// String возвращает интервал в виде "2024-05-01" или "2024-05-01 to 2024-05-03"
func (r DateRange) String() string {
	from := r.From.Format(dateLayout)
	to := r.To.Format(dateLayout)
	if from == to {
		return from
	}
	return from + " to " + to
}
