package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

func newID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
