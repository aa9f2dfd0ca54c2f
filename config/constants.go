package config

import "time"

// Destination API Constants
const (
	// AdaBaseURLTemplate is formatted with the instance name
	AdaBaseURLTemplate = "https://%s.ada.support/api/v2/knowledge"

	// AdaRequestTimeout bounds every knowledge base call
	AdaRequestTimeout = 30 * time.Second

	// MaxPages stops pagination if the server never reports the last page
	MaxPages = 100

	// PageDelay is the minimum spacing between page requests
	PageDelay = 100 * time.Millisecond

	// ItemDelay is the minimum spacing between bulk create/delete calls
	ItemDelay = 100 * time.Millisecond
)

// Source API Constants
const (
	// SourceRequestTimeout bounds the help-center list call
	SourceRequestTimeout = 30 * time.Second

	// DefaultUserType is used when no user type is configured
	DefaultUserType = "passenger"

	// DefaultLocale is used when no locale is configured
	DefaultLocale = "en-sg"
)

// Article URL Constants
const (
	// DefaultArticleDomain hosts articles for regular user types
	DefaultArticleDomain = "help.grab.com"

	// MoveItArticleDomain hosts articles for the MOVE IT user types
	MoveItArticleDomain = "help.moveit.com.ph"

	// ExternalUpdatedLayout is ISO-8601 UTC with microseconds
	ExternalUpdatedLayout = "2006-01-02T15:04:05.000000Z"
)

// Log Retention Constants
const (
	// CallLogSize is the number of remote calls kept in memory
	CallLogSize = 100

	// ActivityLogSize is the number of activity lines kept in memory
	ActivityLogSize = 50

	// HistorySize is the number of sync reports kept in the history store
	HistorySize = 200
)

// Server Constants
const (
	// DefaultAddr is the API listen address
	DefaultAddr = ":8080"

	// DefaultAPIURL is the server the CLI and dashboard talk to
	DefaultAPIURL = "http://localhost:8080"

	// DefaultHistoryKey is the redis list holding sync reports
	DefaultHistoryKey = "helpsync:history"

	// DefaultRequestTopic carries sync trigger requests
	DefaultRequestTopic = "helpsync-requests"

	// DefaultReportTopic receives finished sync reports
	DefaultReportTopic = "helpsync-reports"

	// DefaultConsumerGroup is the Kafka consumer group of the server
	DefaultConsumerGroup = "helpsync"
)
