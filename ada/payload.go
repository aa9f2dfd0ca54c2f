package ada

import (
	"fmt"
	"time"

	"helpsync/config"
	"helpsync/types"
)

// PayloadOptions controls how canonical articles become bulk create payloads
type PayloadOptions struct {
	UserType               string
	LanguageLocale         string
	KnowledgeSourceID      string
	OverrideLanguage       string
	NamePrefix             string
	IDPrefix               string
	IncludeExternalUpdated bool
	// Now defaults to time.Now
	Now func() time.Time
}

// articleHosts maps the MOVE IT user types to their domain and path segment
var articleHosts = map[string]struct{ domain, segment string }{
	"moveitpassenger": {config.MoveItArticleDomain, "passenger"},
	"moveitdriver":    {config.MoveItArticleDomain, "driver"},
}

// ArticleURL builds the public help-center URL of an article
func ArticleURL(userType, locale, articleID string) string {
	domain, segment := config.DefaultArticleDomain, userType
	if host, ok := articleHosts[userType]; ok {
		domain, segment = host.domain, host.segment
	}
	return fmt.Sprintf("https://%s/%s/%s/%s", domain, segment, locale, articleID)
}

// BuildPayload converts one article. It performs no I/O and stamps a fresh
// external_updated time on every call when enabled.
func BuildPayload(article types.SourceArticle, opts PayloadOptions) types.DestinationPayload {
	name := article.Name
	if name == "" {
		name = fmt.Sprintf("Article %s", article.ID)
	}

	language := opts.LanguageLocale
	if opts.OverrideLanguage != "" {
		language = opts.OverrideLanguage
	}

	payload := types.DestinationPayload{
		ID:                opts.IDPrefix + article.ID,
		Name:              opts.NamePrefix + name,
		Content:           article.CleanedBody,
		KnowledgeSourceID: opts.KnowledgeSourceID,
		URL:               ArticleURL(opts.UserType, opts.LanguageLocale, article.ID),
		Language:          language,
	}

	if opts.IncludeExternalUpdated {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		stamp := now().UTC().Format(config.ExternalUpdatedLayout)
		payload.ExternalUpdated = &stamp
	}

	return payload
}

// PayloadOptionsFromSettings fills options from configuration
func PayloadOptionsFromSettings(s *config.Settings, knowledgeSourceID string) PayloadOptions {
	return PayloadOptions{
		UserType:               s.Source.UserType,
		LanguageLocale:         s.Source.Locale,
		KnowledgeSourceID:      knowledgeSourceID,
		OverrideLanguage:       s.Sync.OverrideLanguage,
		NamePrefix:             s.Sync.NamePrefix,
		IDPrefix:               s.Sync.IDPrefix,
		IncludeExternalUpdated: s.Sync.IncludeExternalUpdated,
	}
}
