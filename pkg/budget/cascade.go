package budget

// DeletePlan is the computed impact of deleting a budget: every budget that
// will disappear together with the target. Planning is pure; callers use the
// plan for confirmation messaging and reconcile local state only after the
// persistence layer confirms the cascade.
type DeletePlan struct {
	Target           Budget
	ImpactedChildren []Budget
}

// PlanDelete collects all budgets referencing the target as their parent.
func PlanDelete(target Budget, all []Budget) DeletePlan {
	plan := DeletePlan{Target: target}
	for _, b := range all {
		if b.ParentBudgetID == target.ID {
			plan.ImpactedChildren = append(plan.ImpactedChildren, b)
		}
	}
	return plan
}

// ImpactCount returns the total number of budgets removed by the plan,
// including the target itself.
func (p DeletePlan) ImpactCount() int {
	return 1 + len(p.ImpactedChildren)
}
