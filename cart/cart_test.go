package cart_test

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/jeffsasaki/storefront/cart"
	"github.com/jeffsasaki/storefront/models"
)

var (
	headphones = models.Product{ID: 1, Name: "Headphones", Price: 29999}
	keyboard   = models.Product{ID: 3, Name: "Keyboard", Price: 14950}
	ssd        = models.Product{ID: 6, Name: "SSD", Price: 12999}
)

func uniqueIDs(c cart.Cart) bool {
	seen := map[int64]bool{}
	for _, l := range c.Lines() {
		if seen[l.Product.ID] {
			return false
		}
		seen[l.Product.ID] = true
	}
	return true
}

var _ = Describe("Cart", func() {
	var c cart.Cart

	BeforeEach(func() {
		c = cart.Cart{}
	})

	It("starts empty", func() {
		Expect(c.Empty()).To(BeTrue())
		Expect(c.Total()).To(BeZero())
		Expect(c.LineItems()).To(BeEmpty())
	})

	It("merges repeated adds into one line", func() {
		c = c.Add(headphones).Add(keyboard).Add(headphones)
		Expect(c.Lines()).To(HaveLen(2))
		Expect(c.Lines()[0].Product.ID).To(Equal(int64(1)))
		Expect(c.Lines()[0].Quantity).To(Equal(int64(2)))
		Expect(c.Count()).To(Equal(int64(3)))
		Expect(c.Total()).To(Equal(int64(2*29999 + 14950)))
	})

	It("does not mutate the receiver", func() {
		before := c.Add(headphones)
		after := before.Add(headphones).UpdateQuantity(1, 9).Remove(1)
		Expect(before.Lines()[0].Quantity).To(Equal(int64(1)))
		Expect(after.Empty()).To(BeTrue())
	})

	It("ignores non-positive AddQuantity", func() {
		c = c.AddQuantity(ssd, 0).AddQuantity(ssd, -2)
		Expect(c.Empty()).To(BeTrue())
	})

	It("removes lines and keeps order", func() {
		c = c.Add(headphones).Add(keyboard).Add(ssd).Remove(3)
		Expect(c.LineItems()).To(Equal([]models.LineItem{
			{ProductID: 1, Quantity: 1},
			{ProductID: 6, Quantity: 1},
		}))
		Expect(c.Remove(42).Lines()).To(HaveLen(2))
	})

	It("updates quantity and drops lines set below one", func() {
		c = c.Add(headphones).Add(keyboard)
		c = c.UpdateQuantity(3, 4)
		Expect(c.Lines()[1].Quantity).To(Equal(int64(4)))

		c = c.UpdateQuantity(1, 0)
		Expect(c.Lines()).To(HaveLen(1))
		Expect(c.Lines()[0].Product.ID).To(Equal(int64(3)))

		Expect(c.UpdateQuantity(42, 5).Lines()).To(Equal(c.Lines()))
	})

	It("clears", func() {
		Expect(c.Add(headphones).Add(ssd).Clear().Empty()).To(BeTrue())
	})

	It("never holds two lines for one product", func() {
		ops := []func(cart.Cart) cart.Cart{
			func(c cart.Cart) cart.Cart { return c.Add(headphones) },
			func(c cart.Cart) cart.Cart { return c.AddQuantity(keyboard, 3) },
			func(c cart.Cart) cart.Cart { return c.UpdateQuantity(1, 5) },
			func(c cart.Cart) cart.Cart { return c.Add(keyboard) },
			func(c cart.Cart) cart.Cart { return c.Remove(3) },
			func(c cart.Cart) cart.Cart { return c.Add(headphones) },
			func(c cart.Cart) cart.Cart { return c.Add(ssd) },
		}
		for i := 0; i < 50; i++ {
			c = ops[(i*7+3)%len(ops)](c)
			Expect(uniqueIDs(c)).To(BeTrue())
		}
	})
})

var _ = Describe("Holder", func() {
	It("travels through a context", func() {
		h := cart.NewHolder()
		ctx := cart.NewContext(context.Background(), h)
		Expect(cart.FromContext(ctx)).To(BeIdenticalTo(h))
		Expect(cart.FromContext(context.Background())).To(BeNil())
	})

	It("applies transitions", func() {
		h := cart.NewHolder()
		h.Add(headphones)
		h.Add(keyboard)
		h.UpdateQuantity(1, 3)
		h.Remove(3)
		Expect(h.Cart().LineItems()).To(Equal([]models.LineItem{{ProductID: 1, Quantity: 3}}))
		Expect(h.Clear().Empty()).To(BeTrue())
	})

	It("is safe for concurrent adds", func() {
		h := cart.NewHolder()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.Add(ssd)
			}()
		}
		wg.Wait()
		Expect(h.Cart().Lines()).To(HaveLen(1))
		Expect(h.Cart().Count()).To(Equal(int64(20)))
	})
})
