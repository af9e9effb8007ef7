package ledger

import "time"

// Economy constants. Trust is the accrual currency, TSR the converted one.
const (
	SignupBonusTSR        = 2.0
	BaseMiningRate        = 1.0
	ReferralRateBonus     = 0.5
	ConversionThreshold   = 20.0
	MiningSessionDuration = 24 * time.Hour
	MiningSessionHours    = 24
)

// checkInRewards is the fixed weekly reward cycle, indexed by streak mod 7.
var checkInRewards = [7]float64{3, 5, 7, 10, 13, 16, 20}

// Account is the per-user economic record, stored as one JSON blob under
// the user key.
type Account struct {
	UserID          string     `json:"userId"`
	Email           string     `json:"email"`
	Username        string     `json:"username"`
	TrustPoints     float64    `json:"trustPoints"`
	TSRBalance      float64    `json:"tsrBalance"`
	MiningRate      float64    `json:"miningRate"`
	ReferralCode    string     `json:"referralCode"`
	Referrals       int        `json:"referrals"`
	TotalEarned     float64    `json:"totalEarned"`
	JoinDate        time.Time  `json:"joinDate"`
	WalletAddress   string     `json:"walletAddress"`
	PrivateKey      string     `json:"privateKey"`
	KYCCompleted    bool       `json:"kycCompleted"`
	KYCData         *KYCData   `json:"kycData,omitempty"`
	LastCheckIn     *time.Time `json:"lastCheckIn,omitempty"`
	CheckInStreak   int        `json:"checkInStreak"`
	IsMining        bool       `json:"isMining"`
	MiningStartTime *time.Time `json:"miningStartTime,omitempty"`
	MiningEndTime   *time.Time `json:"miningEndTime,omitempty"`
}

// KYCData holds the verification details submitted by the user. The fields
// are opaque to the ledger; only kycCompleted gates anything upstream.
type KYCData struct {
	FullName    string    `json:"fullName"`
	DateOfBirth string    `json:"dateOfBirth"`
	Address     string    `json:"address"`
	IDNumber    string    `json:"idNumber"`
	VerifiedAt  time.Time `json:"verifiedAt"`
}

// Transaction is an immutable TSR transfer record, indexed globally and
// under both participants.
type Transaction struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}

// CheckInResult reports one daily check-in. NextReward is a preview of what
// the following check-in would pay; it changes no state.
type CheckInResult struct {
	Reward     float64 `json:"reward"`
	Streak     int     `json:"streak"`
	NextReward float64 `json:"nextReward"`
}

// ClaimResult reports a successful mining claim.
type ClaimResult struct {
	Reward  float64 `json:"reward"`
	Account Account `json:"account"`
}

// TeamMember is one referred account in a team listing.
type TeamMember struct {
	Username    string    `json:"username"`
	TotalEarned float64   `json:"totalEarned"`
	JoinDate    time.Time `json:"joinDate"`
	IsMining    bool      `json:"isMining"`
}

// KYCRequest carries the fields of a KYC submission.
type KYCRequest struct {
	FullName    string `json:"fullName"`
	DateOfBirth string `json:"dateOfBirth"`
	Address     string `json:"address"`
	IDNumber    string `json:"idNumber"`
}
