// Package status manages the phase and conditions of Tenant and Instance
// resources.
package status

import (
	"github.com/jbweber/canopy/api/v1alpha1"
)

// SetCondition adds or updates a condition. LastTransitionTime only moves
// when the status changes.
func SetCondition(obj v1alpha1.Object, condType string, status v1alpha1.ConditionStatus, reason, message string) {
	now := v1alpha1.Now()
	generation := obj.GetObjectMeta().Generation
	conditions := obj.GetConditions()

	for i := range *conditions {
		existing := &(*conditions)[i]
		if existing.Type != condType {
			continue
		}
		if existing.Status != status {
			existing.LastTransitionTime = now
		}
		existing.Status = status
		existing.Reason = reason
		existing.Message = message
		existing.ObservedGeneration = generation
		return
	}

	*conditions = append(*conditions, v1alpha1.Condition{
		Type:               condType,
		Status:             status,
		ObservedGeneration: generation,
		LastTransitionTime: now,
		Reason:             reason,
		Message:            message,
	})
}

// GetCondition returns a condition by type, or nil if not found.
func GetCondition(obj v1alpha1.Object, condType string) *v1alpha1.Condition {
	conditions := obj.GetConditions()
	for i := range *conditions {
		if (*conditions)[i].Type == condType {
			return &(*conditions)[i]
		}
	}
	return nil
}

// IsConditionTrue returns true if the condition exists and has status True.
func IsConditionTrue(obj v1alpha1.Object, condType string) bool {
	cond := GetCondition(obj, condType)
	return cond != nil && cond.Status == v1alpha1.ConditionTrue
}

// IsConditionFalse returns true if the condition exists and has status False.
func IsConditionFalse(obj v1alpha1.Object, condType string) bool {
	cond := GetCondition(obj, condType)
	return cond != nil && cond.Status == v1alpha1.ConditionFalse
}

// RemoveCondition removes a condition by type.
func RemoveCondition(obj v1alpha1.Object, condType string) {
	conditions := obj.GetConditions()
	filtered := make([]v1alpha1.Condition, 0, len(*conditions))
	for _, c := range *conditions {
		if c.Type != condType {
			filtered = append(filtered, c)
		}
	}
	*conditions = filtered
}
