package services

import "fmt"

const (
	invalidCredentialsMessage = "Invalid credentials"
	lockedScoreBetMessage     = "Cannot modify score bet, lock date is exceeded"
	lockedBinaryBetMessage    = "Cannot modify binary bet, lock date is exceeded"
	noResultsForAdminMessage  = "No results for admin user"
	unauthorizedAdminMessage  = "Unauthorized access to admin API"
	serviceUnavailableMessage = "Service temporarily unavailable, please retry"
)

func nameAlreadyExistsMessage(name string) string {
	return fmt.Sprintf("Name already exists: %s", name)
}

func betNotFoundMessage(betID string) string {
	return fmt.Sprintf("Bet not found with id: %s", betID)
}

func userNotFoundMessage(userID string) string {
	return fmt.Sprintf("User not found with id: %s", userID)
}

func teamNotFoundMessage(teamID string) string {
	return fmt.Sprintf("Team not found with id: %s", teamID)
}

func groupNotFoundMessage(groupCode string) string {
	return fmt.Sprintf("Group not found with code: %s", groupCode)
}

func phaseNotFoundMessage(phaseCode string) string {
	return fmt.Sprintf("Phase not found with code: %s", phaseCode)
}

func ruleNotFoundMessage(ruleID string) string {
	return fmt.Sprintf("Rule not found with id: %s", ruleID)
}

func invalidTeamIDMessage(teamID string) string {
	return fmt.Sprintf("Invalid team id: %s. Retry with a uuid or ISO 3166-1 alpha-2 code", teamID)
}

func betAlreadyExistsMessage(groupID string, index int) string {
	return fmt.Sprintf("Bet already exists for group: %s and index: %d", groupID, index)
}

func officialMatchNotFoundMessage(groupCode string, index int) string {
	return fmt.Sprintf("Official match not found with group code: %s and index: %d", groupCode, index)
}

func unsatisfiedPasswordMessage(detail string) string {
	return fmt.Sprintf("Unsatisfied password requirements. %s", detail)
}
