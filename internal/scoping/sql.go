package scoping

import "fmt"

// Lead queries alias leads as l and must include LeadAssigneeJoin.
const LeadAssigneeJoin = "LEFT JOIN users au ON au.id = l.assigned_to_id"

// Customer queries alias customers as c and must include CustomerSalesRepJoin.
const CustomerSalesRepJoin = "LEFT JOIN users sr ON sr.id = c.sales_rep_id"

// LeadSQL renders the predicate as a WHERE fragment for leads aliased l.
// argIdx is the next free positional parameter; the returned args must be
// appended in order.
func (p Predicate) LeadSQL(argIdx int) (string, []interface{}) {
	switch p.Kind {
	case MatchAll:
		return "TRUE", nil
	case ByGroup:
		return fmt.Sprintf("l.sales_group_id = $%d", argIdx), []interface{}{p.GroupID}
	case ByAssigneeOrg:
		return fmt.Sprintf("au.sales_org_id = $%d", argIdx), []interface{}{p.OrgID}
	case ByAssignee, ByRepOrConverter:
		return fmt.Sprintf("l.assigned_to_id = $%d", argIdx), []interface{}{p.UserID}
	default:
		return "FALSE", nil
	}
}

// CustomerSQL renders the predicate as a WHERE fragment for customers aliased c.
func (p Predicate) CustomerSQL(argIdx int) (string, []interface{}) {
	switch p.Kind {
	case MatchAll:
		return "TRUE", nil
	case ByGroup:
		return fmt.Sprintf("c.sales_group_id = $%d", argIdx), []interface{}{p.GroupID}
	case ByAssigneeOrg:
		return fmt.Sprintf("sr.sales_org_id = $%d", argIdx), []interface{}{p.OrgID}
	case ByAssignee:
		return fmt.Sprintf("c.sales_rep_id = $%d", argIdx), []interface{}{p.UserID}
	case ByRepOrConverter:
		return fmt.Sprintf("(c.converted_by_id = $%d OR c.sales_rep_id = $%d)", argIdx, argIdx), []interface{}{p.UserID}
	default:
		return "FALSE", nil
	}
}
