package store

import "fmt"

// Collection naming. The (queue, min, pool) triple is encoded in the L1/L2
// collection names so multiple configurations coexist in one database.
const (
	UsersIndexCollection       = "L0_users_index"
	UsersIndexSeasonCollection = "L0_users_index_season"
	MatchesCollection          = "L0_matches"
)

// ViewSuffix encodes a (queue, min, pool) triple, shared by an L1
// collection and its three L2 siblings.
func ViewSuffix(queue, minFriends int, pool string) string {
	return fmt.Sprintf("q%d_min%d_pool_%s", queue, minFriends, pool)
}

// L1Collection is the filtered-view collection name.
func L1Collection(queue, minFriends int, pool string) string {
	return "L1_" + ViewSuffix(queue, minFriends, pool)
}

// L2PlayersCollection holds one row per tracked-player participation.
func L2PlayersCollection(queue, minFriends int, pool string) string {
	return "L2_players_flat_" + ViewSuffix(queue, minFriends, pool)
}

// L2EnemiesCollection holds one row per non-tracked participation.
func L2EnemiesCollection(queue, minFriends int, pool string) string {
	return "L2_enemies_flat_" + ViewSuffix(queue, minFriends, pool)
}

// L2SummaryCollection holds one compact row per L1 match.
func L2SummaryCollection(queue, minFriends int, pool string) string {
	return "L2_matches_summary_" + ViewSuffix(queue, minFriends, pool)
}

// UsersCollectionFor returns the user-index collection for a pool tag.
func UsersCollectionFor(pool string) string {
	if pool == "season" {
		return UsersIndexSeasonCollection
	}
	return UsersIndexCollection
}
