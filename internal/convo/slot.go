// Package convo implements the slot-chain conversation engine used to collect
// an expense record over a multi-turn Telegram dialogue.
package convo

import "fmt"

// ReplyKind classifies the input a slot expects from the user.
type ReplyKind int

const (
	KindNone ReplyKind = iota // automatic slots, never prompted
	KindImage
	KindText
	KindBoolean
	KindChoice
	KindDate
	KindAmount
	KindPayment
)

// Keyboard is a transport-agnostic hint for the reply markup shown with a prompt.
type Keyboard int

const (
	KeyboardRemove Keyboard = iota
	KeyboardPayment
	KeyboardVerified
	KeyboardSkip
)

// End marks the position past the last slot of a chain.
const End = -1

// Canonical slot names, shared with the persistence layer.
const (
	SlotOwner         = "owner"
	SlotCorrelationID = "correlation_id"
	SlotDatetime      = "datetime"
	SlotDescription   = "description"
	SlotAmount        = "amount"
	SlotShop          = "shop"
	SlotLocation      = "location"
	SlotPurpose       = "purpose"
	SlotPayment       = "payment"
	SlotVerified      = "verified"
)

// PaymentMethods are the accepted payment choices, in keyboard order.
var PaymentMethods = []string{"Credit", "Debit", "PayPal", "PayLah"}

// autoVerified maps payment methods whose verified flag is populated without a prompt.
var autoVerified = map[string]bool{
	"Debit":  false,
	"PayPal": false,
	"PayLah": false,
}

// Slot is one named, ordered step in the data-collection chain.
// Slots are immutable once the chain is built.
type Slot struct {
	Name     string
	Auto     bool
	Prompt   string
	Kind     ReplyKind
	Keyboard Keyboard
	Choices  []string

	next int
}

// Chain is the process-wide, read-only sequence of slots.
type Chain struct {
	slots []Slot
	index map[string]int
}

// ChainBuilder accumulates slot definitions and materializes their links in
// one pass. It is meant to be used at startup and discarded after Build.
type ChainBuilder struct {
	slots []Slot
}

// NewChainBuilder returns an empty builder.
func NewChainBuilder() *ChainBuilder {
	return &ChainBuilder{}
}

// Add appends a slot definition in chain order.
func (b *ChainBuilder) Add(s Slot) *ChainBuilder {
	b.slots = append(b.slots, s)
	return b
}

// Build links the accumulated slots and returns the finished chain.
func (b *ChainBuilder) Build() (*Chain, error) {
	if len(b.slots) == 0 {
		return nil, fmt.Errorf("chain: no slots defined")
	}
	c := &Chain{
		slots: make([]Slot, len(b.slots)),
		index: make(map[string]int, len(b.slots)),
	}
	for i, s := range b.slots {
		if s.Name == "" {
			return nil, fmt.Errorf("chain: slot %d has no name", i)
		}
		if _, dup := c.index[s.Name]; dup {
			return nil, fmt.Errorf("chain: duplicate slot name %q", s.Name)
		}
		if i == len(b.slots)-1 {
			s.next = End
		} else {
			s.next = i + 1
		}
		c.slots[i] = s
		c.index[s.Name] = i
	}
	return c, nil
}

// Len returns the number of slots in the chain.
func (c *Chain) Len() int { return len(c.slots) }

// At returns the slot at position i.
func (c *Chain) At(i int) (Slot, bool) {
	if i < 0 || i >= len(c.slots) {
		return Slot{}, false
	}
	return c.slots[i], true
}

// Next returns the position following i, or End.
func (c *Chain) Next(i int) int {
	if i < 0 || i >= len(c.slots) {
		return End
	}
	return c.slots[i].next
}

// Lookup returns the position of the named slot.
func (c *Chain) Lookup(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}

// firstManual returns the position of the first non-automatic slot.
func (c *Chain) firstManual() int {
	for i, s := range c.slots {
		if !s.Auto {
			return i
		}
	}
	return End
}

// NewExpenseChain builds the canonical expense collection chain.
func NewExpenseChain() *Chain {
	b := NewChainBuilder()
	b.Add(Slot{Name: SlotOwner, Auto: true, Kind: KindNone})
	b.Add(Slot{Name: SlotCorrelationID, Auto: true, Kind: KindNone})
	b.Add(Slot{
		Name:   SlotDatetime,
		Prompt: "Please input the date and time of the transaction in the format YYMMDDHHMM. Automatic input can be selected using the command /date.",
		Kind:   KindDate,
	})
	b.Add(Slot{
		Name:   SlotDescription,
		Prompt: "Please input the description of the item.",
		Kind:   KindText,
	})
	b.Add(Slot{
		Name:   SlotAmount,
		Prompt: "Please input the amount of the transaction in SGD.",
		Kind:   KindAmount,
	})
	b.Add(Slot{
		Name:   SlotShop,
		Prompt: "Please input the shop where the transaction occurred. Conclude the transaction at any time using the command /complete.",
		Kind:   KindText,
	})
	b.Add(Slot{
		Name:   SlotLocation,
		Prompt: "Please input the location of the transaction.",
		Kind:   KindText,
	})
	b.Add(Slot{
		Name:   SlotPurpose,
		Prompt: "Please input the purpose of the transaction.",
		Kind:   KindText,
	})
	b.Add(Slot{
		Name:     SlotPayment,
		Prompt:   "Please select the payment method.",
		Kind:     KindPayment,
		Keyboard: KeyboardPayment,
		Choices:  PaymentMethods,
	})
	b.Add(Slot{
		Name:     SlotVerified,
		Prompt:   "Please select if the payment has been verified.",
		Kind:     KindBoolean,
		Keyboard: KeyboardVerified,
	})
	chain, err := b.Build()
	if err != nil {
		// The canonical chain is statically defined; a build failure is a programming error.
		panic(err)
	}
	return chain
}
