// Package population holds every generated person and answers the
// aggregate queries over them.
package population

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rcliao/family-tree/internal/model"
	"github.com/rcliao/family-tree/internal/refdata"
)

var (
	ErrUnknownPerson    = errors.New("person not in population")
	ErrDuplicatePerson  = errors.New("person already in population")
	ErrAlreadyPartnered = errors.New("person already has a partner")
	ErrChildNotYounger  = errors.New("child must be born after parent")
)

// Store is an append-only population indexed by person id. Reads are safe
// to run concurrently; writes are expected from a single generation pass.
type Store struct {
	mu     sync.RWMutex
	people []*model.Person
	byID   map[string]*model.Person
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{byID: make(map[string]*model.Person)}
}

// Add appends p to the population.
func (s *Store) Add(p *model.Person) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("add: person without id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[p.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePerson, p.ID)
	}
	s.people = append(s.people, p)
	s.byID[p.ID] = p
	return nil
}

// Get returns the person with id, or nil.
func (s *Store) Get(id string) *model.Person {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id]
}

// Partner returns p's partner, or nil.
func (s *Store) Partner(p *model.Person) *model.Person {
	if !p.HasPartner() {
		return nil
	}
	return s.Get(p.PartnerID)
}

// Children returns p's children in birth order of generation.
func (s *Store) Children(p *model.Person) []*model.Person {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Person, 0, len(p.ChildIDs))
	for _, id := range p.ChildIDs {
		if c, ok := s.byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// LinkPartners links a and b to each other. Both must already be in the
// store and neither may have a partner.
func (s *Store) LinkPartners(a, b *model.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.knownLocked(a, b); err != nil {
		return err
	}
	if a.ID == b.ID {
		return fmt.Errorf("link partners: %s cannot partner themselves", a.ID)
	}
	for _, p := range []*model.Person{a, b} {
		if p.HasPartner() {
			return fmt.Errorf("%w: %s", ErrAlreadyPartnered, p.FullName())
		}
	}
	a.PartnerID = b.ID
	b.PartnerID = a.ID
	return nil
}

// AddChild appends child to parent's children. Both must be in the store.
func (s *Store) AddChild(parent, child *model.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.knownLocked(parent, child); err != nil {
		return err
	}
	if child.YearBorn <= parent.YearBorn {
		return fmt.Errorf("%w: parent %d, child %d", ErrChildNotYounger, parent.YearBorn, child.YearBorn)
	}
	parent.ChildIDs = append(parent.ChildIDs, child.ID)
	return nil
}

func (s *Store) knownLocked(people ...*model.Person) error {
	for _, p := range people {
		if p == nil {
			return ErrUnknownPerson
		}
		if _, ok := s.byID[p.ID]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPerson, p.ID)
		}
	}
	return nil
}

// All returns a copy of the population in insertion order.
func (s *Store) All() []*model.Person {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Person, len(s.people))
	copy(out, s.people)
	return out
}

// TotalCount returns the number of people ever added.
func (s *Store) TotalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.people)
}

// DecadeCount is the number of people born in a decade.
type DecadeCount struct {
	Decade int    `json:"decade"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
}

// CountByDecade groups the population by birth decade.
func (s *Store) CountByDecade() map[int]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int]int)
	for _, p := range s.people {
		counts[refdata.DecadeOf(p.YearBorn)]++
	}
	return counts
}

// DecadeCounts returns CountByDecade sorted by ascending decade.
func (s *Store) DecadeCounts() []DecadeCount {
	counts := s.CountByDecade()
	out := make([]DecadeCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, DecadeCount{Decade: d, Label: refdata.DecadeLabel(d), Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Decade < out[j].Decade })
	return out
}

// DuplicateFullNames returns, sorted, every full name carried by more
// than one person.
func (s *Store) DuplicateFullNames() []string {
	s.mu.RLock()
	freq := make(map[string]int, len(s.people))
	for _, p := range s.people {
		freq[p.FullName()]++
	}
	s.mu.RUnlock()

	var dups []string
	for name, n := range freq {
		if n > 1 {
			dups = append(dups, name)
		}
	}
	sort.Strings(dups)
	return dups
}
