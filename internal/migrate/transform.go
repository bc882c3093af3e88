package migrate

import "time"

// Transform builds the CONTEXT_<issue> record for a legacy record and the
// fields extracted from its issue. It performs no I/O.
func Transform(owner, repo string, legacy LegacyRecord, fields ExtractedFields, now time.Time) NewRecord {
	return NewRecord{
		Status: StatusAwaiting,
		Payload: Payload{
			ID:                   RequestID,
			SourceSB:             fields.SourceSandbox,
			DaysToKeep:           fields.DaysToKeep,
			Email:                fields.UserEmail,
			IssueNumber:          legacy.IssueNumber,
			RepoOwner:            owner,
			RepoName:             repo,
			IssueCreator:         legacy.Requester,
			ValidIssue:           ValidIssue,
			Env:                  EnvDevHub,
			Status:               legacy.Status,
			SandboxName:          legacy.Name,
			DevHubAuthRequired:   true,
			JobID:                JobID,
			Username:             fields.UserEmail + "." + legacy.Name,
			JobToBeExecutedAfter: MinutesUntilDue(legacy.CreatedAt, legacy.ExpiryDays, now),
		},
	}
}
