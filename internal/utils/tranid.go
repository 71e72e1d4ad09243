package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateTranID builds a merchant transaction id for the gateway. The date
// part keeps ids sortable in the dashboard; the uuid part makes collisions a
// non-issue across instances. The gateway caps tran_id at 30 characters.
func GenerateTranID() string {
	datePart := time.Now().UTC().Format("20060102")
	random := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))

	return fmt.Sprintf("TXN-%s-%s", datePart, random[:16])
}
