// Package pipeline implements the tiered ingestion stages: identity
// resolution (L0), match fetching (L0), filtered views (L1) and flattening
// (L2), plus the run state machine that sequences them.
package pipeline

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"lolmetrics/internal/riot"
	"lolmetrics/internal/roster"
	"lolmetrics/internal/store"
)

// accountResolver is the slice of the riot client the identity resolver
// needs.
type accountResolver interface {
	GetAccountByRiotID(ctx context.Context, gameName, tagLine string) (*riot.AccountResponse, error)
}

// usersWriter is the slice of the store the identity resolver writes to.
type usersWriter interface {
	ReplaceAll(ctx context.Context, docs []store.UserDoc) error
	UpsertSeason(ctx context.Context, docs []store.UserDoc) error
}

// UsersResolver turns a roster file into the canonical user index.
type UsersResolver struct {
	client accountResolver
	users  usersWriter
}

// NewUsersResolver wires the identity resolver.
func NewUsersResolver(client accountResolver, users usersWriter) *UsersResolver {
	return &UsersResolver{client: client, users: users}
}

// ResolveRoster resolves every handle of every persona via the vendor API.
// puuids are always freshly resolved; the roster is the only source of
// truth for membership. A handle that fails to resolve is logged and
// skipped; a persona with zero resolved handles produces no document.
func (u *UsersResolver) ResolveRoster(ctx context.Context, r roster.Roster) ([]store.UserDoc, error) {
	var docs []store.UserDoc

	for _, persona := range r.Personas() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var accounts []store.Account
		for _, handle := range r[persona] {
			gameName, tagLine, err := roster.SplitHandle(handle)
			if err != nil {
				log.WithFields(log.Fields{"persona": persona, "handle": handle}).
					WithError(err).Warn("users: malformed handle, skipping")
				continue
			}

			acct, err := u.client.GetAccountByRiotID(ctx, gameName, tagLine)
			if err != nil {
				if riot.IsAuthError(err) {
					return nil, fmt.Errorf("resolve %s: %w", handle, err)
				}
				log.WithFields(log.Fields{"persona": persona, "handle": handle}).
					WithError(err).Warn("users: handle failed to resolve, skipping")
				continue
			}
			accounts = append(accounts, store.Account{RiotID: handle, PUUID: acct.PUUID})
		}

		if len(accounts) == 0 {
			log.WithField("persona", persona).Warn("users: no handles resolved, persona omitted")
			continue
		}
		docs = append(docs, store.Touch(persona, accounts))
	}

	return docs, nil
}

// Run resolves the roster and persists the user index. The default pool is
// fully replaced; the season pool accrues via upserts.
func (u *UsersResolver) Run(ctx context.Context, r roster.Roster, season bool) (int, error) {
	docs, err := u.ResolveRoster(ctx, r)
	if err != nil {
		return 0, err
	}

	if season {
		if err := u.users.UpsertSeason(ctx, docs); err != nil {
			return 0, err
		}
	} else {
		if err := u.users.ReplaceAll(ctx, docs); err != nil {
			return 0, err
		}
	}
	return len(docs), nil
}
