// services/struggle.go - Struggle detection rules
package services

import (
	"skaila/models"
)

// DetectStruggle evaluates the rule set against one event and returns
// true if any rule fires. Pure: no store access, missing inputs mean
// the rules needing them cannot fire.
//
// Rules:
//  1. high time, low accuracy: duration >= 120s and accuracy <= 50
//  2. retry saturation: retry_count >= 3
//  3. hint dependency: hints_used >= 2 and completion_rate <= 60
//  4. error frequency: error_count / max(total_attempts, 1) >= 0.7
func DetectStruggle(duration, accuracy *float64, context models.JSONMap) bool {
	if duration != nil && accuracy != nil && *duration >= 120 && *accuracy <= 50 {
		return true
	}
	if jsonInt(context["retry_count"]) >= 3 {
		return true
	}
	if jsonInt(context["hints_used"]) >= 2 {
		if rate, ok := context["completion_rate"]; ok && jsonFloat(rate) <= 60 {
			return true
		}
	}
	if errors, ok := context["error_count"]; ok {
		attempts := jsonInt(context["total_attempts"])
		if attempts < 1 {
			attempts = 1
		}
		if jsonFloat(errors)/float64(attempts) >= 0.7 {
			return true
		}
	}
	return false
}

func jsonFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}
