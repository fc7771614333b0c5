package platform

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StackNamePrefix marks CloudFormation stacks created by BranchBox.
const StackNamePrefix = "BB-Env-"

func NewID() string {
	return uuid.New().String()
}

// StackName derives a stack name from the last six digits of the Unix
// millisecond timestamp.
func StackName(now time.Time) string {
	return fmt.Sprintf("%s%06d", StackNamePrefix, now.UnixMilli()%1_000_000)
}
