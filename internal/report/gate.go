package report

import (
	"fmt"
	"strings"

	"github.com/enginesniff/enginesniff/internal/types"
)

// ShouldFail reports whether res breaches the CI gate. A minConfidence of 0
// and an empty expect disable the respective check. The returned reason is
// empty when the gate passes.
func ShouldFail(res types.DetectionResult, minConfidence float64, expect string) (bool, string) {
	if expect != "" && !strings.EqualFold(res.Engine, expect) {
		return true, fmt.Sprintf("expected engine %q, identified %q", expect, res.Engine)
	}
	if minConfidence > 0 && res.Confidence < minConfidence {
		return true, fmt.Sprintf("confidence %s below %s", formatFloat(res.Confidence), formatFloat(minConfidence))
	}
	return false, ""
}
