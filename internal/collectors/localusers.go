// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package collectors

import (
	"time"

	"grimm.is/sentrycore/internal/agentjson"
	"grimm.is/sentrycore/internal/datasource/users"
	"grimm.is/sentrycore/internal/eventcore"
	"grimm.is/sentrycore/internal/queue"
)

// LocalUsersCollector reports local user accounts and their group
// memberships.
type LocalUsersCollector struct{}

// Collect builds one event listing every local account.
func (LocalUsersCollector) Collect(q *queue.Queue) Result {
	it, err := users.Init()
	if err != nil {
		return Exception
	}
	defer it.Deinit()

	arr := agentjson.NewArrayWriter()
	for it.HasNext() {
		acc := it.Next()
		w := agentjson.NewObjectWriter()
		w.WriteString("UserName", acc.UserName)
		w.WriteString("UserId", acc.UserId)
		w.WriteString("GroupNames", acc.GroupNames)
		w.WriteString("GroupIds", acc.GroupIds)
		arr.AddObject(w)
	}

	raw, err := eventcore.BuildEvent(eventcore.CategoryPeriodic, eventcore.NameLocalUsers, eventcore.TypeSecurity, time.Time{}, arr)
	if err != nil {
		return Exception
	}
	return pushEvent(q, raw)
}
