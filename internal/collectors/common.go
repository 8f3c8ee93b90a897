// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package collectors

import "grimm.is/sentrycore/internal/queue"

// pushEvent pushes raw onto q and maps the queue's back-pressure result
// onto the collector result taxonomy.
func pushEvent(q *queue.Queue, raw []byte) Result {
	if q.PushBack(raw) == queue.MaxMemoryExceeded {
		return OutOfMem
	}
	return OK
}
