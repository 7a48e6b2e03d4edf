package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type orderNumberGenerator struct{}

func NewOrderNumberGenerator() OrderNumberGenerator {
	return orderNumberGenerator{}
}

// ORD-<unix ms>-<ランダム6桁>
func (orderNumberGenerator) Next(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}
