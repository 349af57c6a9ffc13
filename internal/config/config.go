package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full environment of one campaign instance. Load it after
// godotenv has populated the process env.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Identity of this campaign instance on the broadcast bus.
	CampaignID int64 `env:"CAMPAIGN_ID,required"`
	ClientID   int64 `env:"CLIENT_ID" envDefault:"0"`

	RabbitUser     string `env:"RABBITMQ_USER" envDefault:"guest"`
	RabbitPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitHost     string `env:"RABBITMQ_HOST" envDefault:"localhost"`
	RabbitPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`

	DirectoryURL   string `env:"DIRECTORY_URL" envDefault:"https://vanguardcontact.com/sapi"`
	DirectoryToken string `env:"DIRECTORY_TOKEN"`

	MailHost          string `env:"MAIL_HOST"`
	MailPort          int    `env:"MAIL_PORT" envDefault:"587"`
	MailUser          string `env:"MAIL_USER"`
	MailPassword      string `env:"MAIL_PASSWORD"`
	ReviewNotifyEmail string `env:"REVIEW_NOTIFY_EMAIL"`

	// LeaseWindow is how long a lease write keeps a person off the pool.
	// Observed policy is 23 hours; a stale lease simply expires, there is
	// no release call.
	LeaseWindow    time.Duration `env:"LEASE_WINDOW" envDefault:"23h"`
	QueueBatchSize int           `env:"QUEUE_BATCH_SIZE" envDefault:"100"`
	DBTimeout      time.Duration `env:"DB_TIMEOUT" envDefault:"5s"`

	Cooldown CooldownIntervals
}

// CooldownIntervals are the per-outcome "allowed again" offsets. The
// relative ordering matters (persuasion cooldowns are much shorter than
// donation cooldowns after a decline); the absolute values are tunable.
type CooldownIntervals struct {
	DonationAfterResponseMonths int `env:"COOLDOWN_DONATION_MONTHS" envDefault:"6"`
	RecurringDonationYears      int `env:"COOLDOWN_RECURRING_YEARS" envDefault:"4"`
	PersuasionAfterDonationDays int `env:"COOLDOWN_PERSUASION_AFTER_DONATION_DAYS" envDefault:"14"`
	AfterPersuasionDays         int `env:"COOLDOWN_AFTER_PERSUASION_DAYS" envDefault:"7"`
	NoAnswerRetryDays           int `env:"COOLDOWN_NO_ANSWER_DAYS" envDefault:"7"`
	RefusalMonths               int `env:"COOLDOWN_REFUSAL_MONTHS" envDefault:"1"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) RabbitURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.RabbitUser, c.RabbitPassword, c.RabbitHost, c.RabbitPort)
}
