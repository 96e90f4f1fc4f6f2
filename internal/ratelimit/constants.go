package ratelimit

// Rescale API throttle scopes used while browsing.
//
// Every /api/v3/ endpoint (folder contents, jobs, users/me) shares the "user" scope.
// The v2 job query endpoints have their own, much larger "jobs-usage" scope.
const (
	UserScopeLimitPerHour = 7200  // 2 requests per second
	JobsUsageLimitPerHour = 90000 // 25 requests per second
)

// Target rates stay at 85% of the hard limit.
const (
	UserScopeRatePerSec = 1.7
	JobsUsageRatePerSec = 21.25
)

// Burst capacities let a fresh browser page through a large folder quickly before
// settling at the target rate.
const (
	UserScopeBurstCapacity = 150
	JobsUsageBurstCapacity = 300
)
