package attendance

import (
	"strings"

	"github.com/cmlabs-hris/field-attendance/internal/domain/attendance"
)

// UnassignedBranch labels employees whose branch name is blank.
const UnassignedBranch = "Unassigned"

// GroupByBranch groups the flat team list by branch in first-seen order,
// keeping each member in its original position within the group.
func GroupByBranch(list []attendance.EmployeeAttendance) []attendance.BranchGroup {
	groups := make([]attendance.BranchGroup, 0)
	index := make(map[string]int)

	for _, emp := range list {
		name := strings.TrimSpace(emp.BranchName)
		if name == "" {
			name = UnassignedBranch
		}

		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, attendance.BranchGroup{BranchName: name})
		}
		groups[i].Members = append(groups[i].Members, emp)
	}

	return groups
}
