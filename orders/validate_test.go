package orders_test

import (
	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/jeffsasaki/storefront/models"
	"github.com/jeffsasaki/storefront/orders"
)

func validRequest() models.CreateOrderRequest {
	return models.CreateOrderRequest{
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		CustomerAddress: "12 Analytical Way",
		Items:           []models.LineItem{{ProductID: 1, Quantity: 1}},
	}
}

var _ = Describe("Validate", func() {
	It("accepts a complete request", func() {
		Expect(orders.Validate(validRequest())).To(Succeed())
	})

	table.DescribeTable("rejects bad fields",
		func(mutate func(*models.CreateOrderRequest), field, message string) {
			req := validRequest()
			mutate(&req)
			err := orders.Validate(req)
			Expect(err).To(HaveOccurred())

			vErr, ok := err.(*orders.ValidationError)
			Expect(ok).To(BeTrue())
			Expect(vErr.Field).To(Equal(field))
			Expect(vErr.Message).To(Equal(message))
		},
		table.Entry("empty name", func(r *models.CreateOrderRequest) { r.CustomerName = "" },
			"customerName", "Name is required"),
		table.Entry("blank name", func(r *models.CreateOrderRequest) { r.CustomerName = "   " },
			"customerName", "Name is required"),
		table.Entry("email without domain", func(r *models.CreateOrderRequest) { r.CustomerEmail = "ada@" },
			"customerEmail", "Invalid email address"),
		table.Entry("email without tld", func(r *models.CreateOrderRequest) { r.CustomerEmail = "ada@localhost" },
			"customerEmail", "Invalid email address"),
		table.Entry("email with display name", func(r *models.CreateOrderRequest) { r.CustomerEmail = "Ada <ada@example.com>" },
			"customerEmail", "Invalid email address"),
		table.Entry("short address", func(r *models.CreateOrderRequest) { r.CustomerAddress = "1 A" },
			"customerAddress", "Address is required"),
		table.Entry("no items", func(r *models.CreateOrderRequest) { r.Items = []models.LineItem{} },
			"items", "At least one item is required"),
		table.Entry("zero quantity", func(r *models.CreateOrderRequest) {
			r.Items = []models.LineItem{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 0}}
		}, "items.1.quantity", "Number must be greater than or equal to 1"),
		table.Entry("negative quantity", func(r *models.CreateOrderRequest) {
			r.Items = []models.LineItem{{ProductID: 1, Quantity: -3}}
		}, "items.0.quantity", "Number must be greater than or equal to 1"),
		table.Entry("quantity above int4", func(r *models.CreateOrderRequest) {
			r.Items = []models.LineItem{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 3000000000}}
		}, "items.1.quantity", "Quantity is too large"),
	)

	It("accepts the largest storable quantity", func() {
		req := validRequest()
		req.Items = []models.LineItem{{ProductID: 1, Quantity: models.MaxInt4}}
		Expect(orders.Validate(req)).To(Succeed())
	})

	It("counts the address as given", func() {
		req := validRequest()
		req.CustomerAddress = " 1 A "
		Expect(orders.Validate(req)).To(Succeed())
	})

	It("reports the first failing field", func() {
		req := validRequest()
		req.CustomerName = ""
		req.CustomerEmail = "nope"
		err := orders.Validate(req)
		Expect(err).To(MatchError("customerName: Name is required"))
	})
})
