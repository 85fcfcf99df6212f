package htb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"huct/internal/catalog"
)

// Logical endpoint names, used in logs and metrics labels.
const (
	EndpointChallenges        = "challenges"
	EndpointRetiredChallenges = "retired_challenges"
	EndpointMachines          = "machines"
	EndpointRetiredMachines   = "retired_machines"
	EndpointFortresses        = "fortresses"
	EndpointMembers           = "members"
	EndpointActivity          = "activity"
)

const (
	pathChallenges        = "/challenge/list"
	pathRetiredChallenges = "/challenge/list/retired"
	pathMachines          = "/machine/paginated"
	pathRetiredMachines   = "/machine/list/retired/paginated"
	pathFortresses        = "/fortresses"
	pathMembers           = "/university/members/%d"
	pathActivity          = "/user/profile/activity/%d"
)

// DefaultMaxPages bounds a paginated listing.
const DefaultMaxPages = 500

// Fetcher materializes API listings into a registry.
type Fetcher struct {
	client   *Client
	reg      *catalog.Registry
	logger   *zap.Logger
	maxPages int
}

// NewFetcher creates a fetcher writing into reg. maxPages <= 0 selects DefaultMaxPages.
func NewFetcher(client *Client, reg *catalog.Registry, logger *zap.Logger, maxPages int) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Fetcher{client: client, reg: reg, logger: logger, maxPages: maxPages}
}

// Registry returns the registry the fetcher writes into.
func (f *Fetcher) Registry() *catalog.Registry {
	return f.reg
}

// =============================================================================
// CHALLENGES
// =============================================================================

// FetchChallenges registers active challenges, then retired ones.
func (f *Fetcher) FetchChallenges(ctx context.Context) error {
	if err := f.fetchChallengeList(ctx, EndpointChallenges, pathChallenges, false); err != nil {
		return err
	}
	return f.fetchChallengeList(ctx, EndpointRetiredChallenges, pathRetiredChallenges, true)
}

func (f *Fetcher) fetchChallengeList(ctx context.Context, endpoint, path string, retired bool) error {
	body, err := f.client.Get(ctx, endpoint, path)
	if err != nil {
		return err
	}
	f.logger.Debug("Challenge listing", zap.String("endpoint", endpoint), zap.ByteString("body", body))

	var list challengeList
	if err := decode(body, &list, endpoint); err != nil {
		return err
	}
	if list.Challenges == nil {
		return missing(endpoint, "challenges")
	}

	for _, ch := range *list.Challenges {
		if ch.ID == nil {
			return missing(endpoint, "challenges[].id")
		}
		if ch.CategoryID == nil {
			return missing(endpoint, "challenges[].challenge_category_id")
		}

		categoryID := int(*ch.CategoryID)
		if _, known := catalog.CategoryName(categoryID); !known {
			f.logger.Warn("Unexpected category ID",
				zap.Int("category_id", categoryID),
				zap.String("challenge", ch.Name))
		}

		_, err := f.reg.RegisterChallenge(int(*ch.ID), ch.Name, retired, catalog.Difficulty(ch.Difficulty), categoryID)
		f.warnDuplicate(err)
	}
	return nil
}

// =============================================================================
// MACHINES
// =============================================================================

// FetchMachines registers active machines, then retired ones. Both listings
// are paginated.
func (f *Fetcher) FetchMachines(ctx context.Context) error {
	if err := f.fetchMachinePages(ctx, EndpointMachines, pathMachines, false); err != nil {
		return err
	}
	return f.fetchMachinePages(ctx, EndpointRetiredMachines, pathRetiredMachines, true)
}

// fetchMachinePages requests page 1, 2, ... until the response reports
// current_page == last_page.
func (f *Fetcher) fetchMachinePages(ctx context.Context, endpoint, path string, retired bool) error {
	for page := 1; ; page++ {
		if page > f.maxPages {
			return fmt.Errorf("%w: %s did not reach its last page within %d pages", ErrPageLimit, endpoint, f.maxPages)
		}

		body, err := f.client.Get(ctx, endpoint, fmt.Sprintf("%s?page=%d", path, page))
		if err != nil {
			return err
		}
		f.logger.Debug("Machine page", zap.String("endpoint", endpoint), zap.Int("page", page), zap.ByteString("body", body))

		var p machinePage
		if err := decode(body, &p, endpoint); err != nil {
			return err
		}
		if p.Data == nil {
			return missing(endpoint, "data")
		}
		if p.Meta == nil || p.Meta.CurrentPage == nil || p.Meta.LastPage == nil {
			return missing(endpoint, "meta.current_page/meta.last_page")
		}

		for _, m := range *p.Data {
			if m.ID == nil {
				return missing(endpoint, "data[].id")
			}
			_, err := f.reg.RegisterMachine(int(*m.ID), m.Name, retired, catalog.Difficulty(m.DifficultyText))
			f.warnDuplicate(err)
		}

		if *p.Meta.CurrentPage == *p.Meta.LastPage {
			return nil
		}
	}
}

// =============================================================================
// FORTRESSES
// =============================================================================

// FetchFortresses registers every fortress. The listing is keyed by opaque
// pseudo-ids that are discarded; registration follows document order.
func (f *Fetcher) FetchFortresses(ctx context.Context) error {
	body, err := f.client.Get(ctx, EndpointFortresses, pathFortresses)
	if err != nil {
		return err
	}
	f.logger.Debug("Fortress listing", zap.ByteString("body", body))

	var list fortressList
	if err := decode(body, &list, EndpointFortresses); err != nil {
		return err
	}
	if len(list.Data) == 0 {
		return missing(EndpointFortresses, "data")
	}

	err = eachMember(list.Data, func(key string, value json.RawMessage) error {
		var fo fortressJSON
		if err := decode(value, &fo, EndpointFortresses); err != nil {
			return err
		}
		if fo.ID == nil {
			return missing(EndpointFortresses, "data."+key+".id")
		}
		_, err := f.reg.RegisterFortress(int(*fo.ID), fo.Name)
		f.warnDuplicate(err)
		return nil
	})
	if err != nil && !errors.Is(err, ErrMalformedResponse) {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, EndpointFortresses, err)
	}
	return err
}

// =============================================================================
// MEMBERS AND ACTIVITY
// =============================================================================

// FetchMembers registers every member of the organization, active and
// pending alike, and returns them in listing order.
func (f *Fetcher) FetchMembers(ctx context.Context, organizationID int) ([]*catalog.Member, error) {
	body, err := f.client.Get(ctx, EndpointMembers, fmt.Sprintf(pathMembers, organizationID))
	if err != nil {
		return nil, err
	}

	var list []memberJSON
	if err := decode(body, &list, EndpointMembers); err != nil {
		return nil, err
	}

	members := make([]*catalog.Member, 0, len(list))
	for _, mj := range list {
		if mj.ID == nil {
			return nil, missing(EndpointMembers, "[].id")
		}
		m, err := f.reg.RegisterMember(int(*mj.ID), mj.Name)
		if err != nil {
			f.warnDuplicate(err)
			continue
		}
		members = append(members, m)
	}
	return members, nil
}

// FetchMemberActivity replays the member's activity feed against the
// registry and returns the number of new ownership links. Activity that
// references an id missing from the registry is ignored. An unknown
// object_type aborts with ErrUnknownObjectType.
func (f *Fetcher) FetchMemberActivity(ctx context.Context, member *catalog.Member) (int, error) {
	body, err := f.client.Get(ctx, EndpointActivity, fmt.Sprintf(pathActivity, member.ID))
	if err != nil {
		return 0, err
	}

	var feed activityFeed
	if err := decode(body, &feed, EndpointActivity); err != nil {
		return 0, err
	}
	if feed.Profile == nil || feed.Profile.Activity == nil {
		return 0, missing(EndpointActivity, "profile.activity")
	}

	flagged := 0
	for _, a := range *feed.Profile.Activity {
		kind, ok := catalog.ParseObjectType(a.ObjectType)
		if !ok {
			f.logger.Error("Unknown object_type in activity feed; the platform may have added a new kind of content",
				zap.String("object_type", a.ObjectType),
				zap.Int("member_id", member.ID),
				zap.String("member", member.Name))
			return flagged, fmt.Errorf("%w: %q in activity of member %d", ErrUnknownObjectType, a.ObjectType, member.ID)
		}
		if a.ID == nil {
			return flagged, missing(EndpointActivity, "profile.activity[].id")
		}

		if f.reg.Flag(member, kind, int(*a.ID)) {
			flagged++
		} else if _, known := f.reg.Lookup(kind, int(*a.ID)); !known {
			f.logger.Debug("Activity references an item outside the catalog",
				zap.String("kind", kind.String()),
				zap.Int("id", int(*a.ID)),
				zap.String("name", a.Name))
		}
	}
	return flagged, nil
}

func (f *Fetcher) warnDuplicate(err error) {
	if err == nil {
		return
	}
	f.logger.Warn("Skipping duplicate entry", zap.Error(err))
}
