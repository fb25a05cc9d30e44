package orders_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/jeffsasaki/storefront/models"
	"github.com/jeffsasaki/storefront/orders"
	"github.com/jeffsasaki/storefront/store"
)

var _ = Describe("Service", func() {
	var (
		ctx      context.Context
		st       *memStore
		notifier *recordingNotifier
		svc      *orders.Service
		req      models.CreateOrderRequest
	)

	headphones := models.Product{ID: 1, Name: "Headphones", Price: 29999, Category: "Audio", InStock: true}
	watch := models.Product{ID: 2, Name: "Watch", Price: 39900, Category: "Wearables", InStock: false}

	BeforeEach(func() {
		ctx = context.Background()
		st = newMemStore(headphones, watch)
		notifier = &recordingNotifier{}
		svc = orders.NewService(st, orders.WithNotifier(notifier))
		req = models.CreateOrderRequest{
			CustomerName:    "Ada Lovelace",
			CustomerEmail:   "ada@example.com",
			CustomerAddress: "12 Analytical Way",
			Items:           []models.LineItem{{ProductID: 1, Quantity: 2}},
		}
	})

	Describe("CreateOrder", func() {
		It("prices items from the catalog and totals them", func() {
			order, err := svc.CreateOrder(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(order.TotalAmount).To(Equal(int64(59998)))
			Expect(order.Status).To(Equal(models.StatusPending))
			Expect(order.Items).To(HaveLen(1))
			Expect(order.Items[0].PriceAtTime).To(Equal(int64(29999)))
			Expect(order.Items[0].Quantity).To(Equal(int64(2)))
			Expect(order.Items[0].Product.Name).To(Equal("Headphones"))
		})

		It("keeps the total equal to the sum of the snapshotted lines", func() {
			req.Items = []models.LineItem{{ProductID: 1, Quantity: 3}, {ProductID: 2, Quantity: 1}}
			order, err := svc.CreateOrder(ctx, req)
			Expect(err).NotTo(HaveOccurred())

			var sum int64
			for _, it := range order.Items {
				sum += it.PriceAtTime * it.Quantity
			}
			Expect(order.TotalAmount).To(Equal(sum))
			Expect(sum).To(Equal(int64(3*29999 + 39900)))
		})

		It("accepts products that are out of stock", func() {
			req.Items = []models.LineItem{{ProductID: 2, Quantity: 1}}
			_, err := svc.CreateOrder(ctx, req)
			Expect(err).NotTo(HaveOccurred())
		})

		It("notifies after the order commits", func() {
			order, err := svc.CreateOrder(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(notifier.orders).To(Equal([]int64{order.ID}))
		})

		It("still returns the order when notification fails", func() {
			notifier.err = errors.New("broker down")
			order, err := svc.CreateOrder(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(order.ID).To(Equal(int64(1)))
		})

		It("trims the customer name and keeps the address as given", func() {
			req.CustomerName = "  Ada  "
			req.CustomerAddress = " 12 Analytical Way "
			order, err := svc.CreateOrder(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(order.CustomerName).To(Equal("Ada"))
			Expect(order.CustomerAddress).To(Equal(" 12 Analytical Way "))
		})

		Context("when a product does not exist", func() {
			It("fails naming the product and writes nothing", func() {
				req.Items = []models.LineItem{{ProductID: 1, Quantity: 1}, {ProductID: 999, Quantity: 1}}
				_, err := svc.CreateOrder(ctx, req)

				var notFound *orders.ProductNotFoundError
				Expect(errors.As(err, &notFound)).To(BeTrue())
				Expect(notFound.ProductID).To(Equal(int64(999)))
				Expect(err.Error()).To(Equal("Product 999 not found"))
				Expect(st.creates).To(BeZero())
				Expect(st.orderCount()).To(BeZero())
				Expect(notifier.orders).To(BeEmpty())
			})
		})

		Context("when the product disappears before the insert", func() {
			It("reports it as a missing product", func() {
				st.createErr = &store.ProductReferenceError{ProductID: 1}
				_, err := svc.CreateOrder(ctx, req)

				var notFound *orders.ProductNotFoundError
				Expect(errors.As(err, &notFound)).To(BeTrue())
				Expect(notFound.ProductID).To(Equal(int64(1)))
			})
		})

		Context("when the store fails", func() {
			It("returns an internal error and does not notify", func() {
				st.createErr = errors.New("connection refused")
				_, err := svc.CreateOrder(ctx, req)
				Expect(err).To(MatchError(ContainSubstring("connection refused")))

				var vErr *orders.ValidationError
				Expect(errors.As(err, &vErr)).To(BeFalse())
				Expect(notifier.orders).To(BeEmpty())
			})
		})

		Context("when a line overflows", func() {
			It("rejects the quantity", func() {
				req.Items = []models.LineItem{{ProductID: 1, Quantity: math.MaxInt64 / 2}}
				_, err := svc.CreateOrder(ctx, req)

				var vErr *orders.ValidationError
				Expect(errors.As(err, &vErr)).To(BeTrue())
				Expect(vErr.Field).To(Equal("items.0.quantity"))
				Expect(st.creates).To(BeZero())
			})
		})

		Context("when the request is invalid", func() {
			It("stops before touching the catalog", func() {
				req.Items = nil
				_, err := svc.CreateOrder(ctx, req)

				var vErr *orders.ValidationError
				Expect(errors.As(err, &vErr)).To(BeTrue())
				Expect(vErr.Field).To(Equal("items"))
				Expect(st.creates).To(BeZero())
			})
		})
	})

	Describe("GetOrder", func() {
		It("returns the same order on repeated reads", func() {
			created, err := svc.CreateOrder(ctx, req)
			Expect(err).NotTo(HaveOccurred())

			first, err := svc.GetOrder(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			second, err := svc.GetOrder(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
			Expect(first).To(Equal(created))
		})

		It("reports unknown ids as not found", func() {
			_, err := svc.GetOrder(ctx, 42)
			Expect(err).To(MatchError(store.ErrNotFound))
		})
	})

	Describe("GetProduct", func() {
		It("reports unknown ids as not found", func() {
			_, err := svc.GetProduct(ctx, 999)
			Expect(errors.Is(err, store.ErrNotFound)).To(BeTrue())
		})
	})
})

var _ = Describe("ListProducts", func() {
	It("passes the filter through to the store", func() {
		st := newMemStore(
			models.Product{ID: 2, Name: "Watch", Category: "Wearables"},
			models.Product{ID: 1, Name: "Headphones", Category: "Audio"},
		)
		svc := orders.NewService(st)

		all, err := svc.ListProducts(context.Background(), store.ProductFilter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(2))
		Expect(all[0].ID).To(Equal(int64(1)))

		audio, err := svc.ListProducts(context.Background(), store.ProductFilter{Category: "Audio"})
		Expect(err).NotTo(HaveOccurred())
		Expect(audio).To(ConsistOf(HaveField("Name", "Headphones")))
	})
})
