package crawler

// frontier owns the FIFO queue and the dedup state of one crawl.
type frontier struct {
	queue   []string
	visited *urlSet // dequeued for processing
	seen    *urlSet // visited or still queued
	order   []string
}

// expectedPages sizes the bloom filters of a new frontier.
const expectedPages = 10_000

func newFrontier(seed string) *frontier {
	f := &frontier{
		visited: newURLSet(expectedPages),
		seen:    newURLSet(expectedPages),
	}
	f.push(seed)
	return f
}

// push enqueues u unless it was already visited or queued.
func (f *frontier) push(u string) bool {
	if f.visited.Contains(u) || !f.seen.Add(u) {
		return false
	}
	f.queue = append(f.queue, u)
	f.order = append(f.order, u)
	return true
}

// nextBatch dequeues up to n unvisited URLs and marks them visited.
func (f *frontier) nextBatch(n int) []string {
	batch := make([]string, 0, n)
	for len(batch) < n && len(f.queue) > 0 {
		u := f.queue[0]
		f.queue[0] = ""
		f.queue = f.queue[1:]
		if f.visited.Add(u) {
			batch = append(batch, u)
		}
	}
	return batch
}

func (f *frontier) empty() bool { return len(f.queue) == 0 }

// discovered is the number of distinct URLs ever queued.
func (f *frontier) discovered() int { return f.seen.Len() }

// discoveryOrder returns every URL in the order it was first queued.
func (f *frontier) discoveryOrder() []string { return f.order }
