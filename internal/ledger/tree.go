package ledger

import (
	"errors"
	"sort"
	"strings"

	"accounting/internal/models"
)

var (
	ErrUnknownAccount = errors.New("unknown account")
	ErrCycle          = errors.New("account hierarchy contains a cycle")
)

const (
	CodeSeparator = "-"
	NameSeparator = " > "
)

// Tree indexes a flat chart of accounts by id and by parent.
type Tree struct {
	accounts []models.Account
	index    map[string]int
	children map[string][]int
}

func NewTree(accounts []models.Account) *Tree {
	sorted := make([]models.Account, len(accounts))
	copy(sorted, accounts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })

	t := &Tree{
		accounts: sorted,
		index:    make(map[string]int, len(sorted)),
		children: make(map[string][]int),
	}
	for i, account := range sorted {
		t.index[account.ID] = i
	}
	for i, account := range sorted {
		if account.ParentID == nil {
			continue
		}
		if _, ok := t.index[*account.ParentID]; !ok {
			continue
		}
		t.children[*account.ParentID] = append(t.children[*account.ParentID], i)
	}
	return t
}

func (t *Tree) Account(id string) (models.Account, bool) {
	i, ok := t.index[id]
	if !ok {
		return models.Account{}, false
	}
	return t.accounts[i], true
}

// Accounts returns every account ordered by code.
func (t *Tree) Accounts() []models.Account {
	out := make([]models.Account, len(t.accounts))
	copy(out, t.accounts)
	return out
}

func (t *Tree) OfType(accountType models.AccountType, activeOnly bool) []models.Account {
	var out []models.Account
	for _, account := range t.accounts {
		if account.Type != accountType {
			continue
		}
		if activeOnly && !account.IsActive {
			continue
		}
		out = append(out, account)
	}
	return out
}

func (t *Tree) Roots() []models.Account {
	var out []models.Account
	for _, account := range t.accounts {
		if account.ParentID == nil {
			out = append(out, account)
			continue
		}
		if _, ok := t.index[*account.ParentID]; !ok {
			out = append(out, account)
		}
	}
	return out
}

func (t *Tree) Children(id string) []models.Account {
	idx := t.children[id]
	out := make([]models.Account, 0, len(idx))
	for _, i := range idx {
		out = append(out, t.accounts[i])
	}
	return out
}

func (t *Tree) IsParent(id string) bool {
	return len(t.children[id]) > 0
}

// Ancestors returns the chain from the root down to id, id included.
func (t *Tree) Ancestors(id string) ([]models.Account, error) {
	i, ok := t.index[id]
	if !ok {
		return nil, ErrUnknownAccount
	}
	seen := map[string]bool{}
	var chain []models.Account
	for {
		account := t.accounts[i]
		if seen[account.ID] {
			return nil, ErrCycle
		}
		seen[account.ID] = true
		chain = append(chain, account)
		if account.ParentID == nil {
			break
		}
		next, ok := t.index[*account.ParentID]
		if !ok {
			break
		}
		i = next
	}
	for l, r := 0, len(chain)-1; l < r; l, r = l+1, r-1 {
		chain[l], chain[r] = chain[r], chain[l]
	}
	return chain, nil
}

func (t *Tree) FullCode(id string) (string, error) {
	chain, err := t.Ancestors(id)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(chain))
	for i, account := range chain {
		parts[i] = account.Code
	}
	return strings.Join(parts, CodeSeparator), nil
}

func (t *Tree) FullName(id string) (string, error) {
	chain, err := t.Ancestors(id)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(chain))
	for i, account := range chain {
		parts[i] = account.Name
	}
	return strings.Join(parts, NameSeparator), nil
}

// Descendants walks the subtree under id depth-first, excluding id itself.
func (t *Tree) Descendants(id string) ([]models.Account, error) {
	if _, ok := t.index[id]; !ok {
		return nil, ErrUnknownAccount
	}
	seen := map[string]bool{id: true}
	var out []models.Account
	stack := []int{t.index[id]}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.accounts[current].ID != id {
			out = append(out, t.accounts[current])
		}
		kids := t.children[t.accounts[current].ID]
		for k := len(kids) - 1; k >= 0; k-- {
			child := t.accounts[kids[k]]
			if seen[child.ID] {
				return nil, ErrCycle
			}
			seen[child.ID] = true
			stack = append(stack, kids[k])
		}
	}
	return out, nil
}

// WouldCycle reports whether re-parenting id under parentID closes a loop.
func (t *Tree) WouldCycle(id, parentID string) bool {
	if id == parentID {
		return true
	}
	chain, err := t.Ancestors(parentID)
	if err != nil {
		return errors.Is(err, ErrCycle)
	}
	for _, account := range chain {
		if account.ID == id {
			return true
		}
	}
	return false
}
