package fakebackend

import (
	"fmt"
	"math"
	"strings"
	"time"

	"tienda/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func toWireProduct(rec productRecord) models.Product {
	return models.Product{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Price:       rec.Price,
		Stock:       rec.Stock,
	}
}

func toWireShipping(rec shippingRecord) models.ShippingMethod {
	return models.ShippingMethod{
		ID:            rec.ID,
		Name:          rec.Name,
		Price:         rec.Price,
		EstimatedTime: rec.EstimatedTime,
	}
}

// toWireOrder assembles the order as the backend serializes it: one product
// entry per purchased unit, with the price snapshotted at order time.
func (s *Server) toWireOrder(rec orderRecord) (models.Order, error) {
	var units []orderUnitRecord
	if err := s.db.Order("id").Find(&units, "order_id = ?", rec.ID).Error; err != nil {
		return models.Order{}, err
	}
	products := make([]models.Product, 0, len(units))
	for _, u := range units {
		products = append(products, models.Product{
			ID:          u.ProductID,
			Name:        u.Name,
			Description: u.Description,
			Price:       u.Price,
		})
	}

	order := models.Order{
		ID:              rec.ID,
		CustomerName:    rec.CustomerName,
		CustomerAddress: rec.CustomerAddress,
		Products:        products,
		Total:           rec.Total,
		Date:            rec.Date,
		Status:          rec.Status,
	}

	var shipping shippingRecord
	if err := s.db.First(&shipping, "id = ?", rec.ShippingID).Error; err == nil {
		method := toWireShipping(shipping)
		order.ShippingMethod = &method
	}
	return order, nil
}

func (s *Server) handleListProducts(c *fiber.Ctx) error {
	var recs []productRecord
	if err := s.db.Order("id").Find(&recs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "No se pudieron obtener los productos"})
	}
	products := make([]models.Product, 0, len(recs))
	for _, rec := range recs {
		products = append(products, toWireProduct(rec))
	}
	return c.JSON(products)
}

func (s *Server) handleGetProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identificador inválido"})
	}
	var rec productRecord
	if err := s.db.First(&rec, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Producto no encontrado"})
	}
	return c.JSON(toWireProduct(rec))
}

func (s *Server) handleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cuerpo de la petición inválido"})
	}
	rec := productRecord{
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "No se pudo crear el producto"})
	}
	return c.Status(fiber.StatusCreated).JSON(toWireProduct(rec))
}

func (s *Server) handleUpdateProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identificador inválido"})
	}
	var rec productRecord
	if err := s.db.First(&rec, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Producto no encontrado"})
	}
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cuerpo de la petición inválido"})
	}
	rec.Name = product.Name
	rec.Description = product.Description
	rec.Price = product.Price
	rec.Stock = product.Stock
	if err := s.db.Save(&rec).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "No se pudo actualizar el producto"})
	}
	return c.JSON(toWireProduct(rec))
}

func (s *Server) handleDeleteProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identificador inválido"})
	}

	var referenced int64
	if err := s.db.Model(&orderUnitRecord{}).Where("product_id = ?", id).Count(&referenced).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "No se pudo verificar el producto"})
	}
	if referenced > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "El producto tiene pedidos asociados"})
	}

	res := s.db.Delete(&productRecord{}, "id = ?", id)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "No se pudo eliminar el producto"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Producto no encontrado"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleListShippingMethods(c *fiber.Ctx) error {
	var recs []shippingRecord
	if err := s.db.Order("id").Find(&recs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "No se pudieron obtener los envíos"})
	}
	methods := make([]models.ShippingMethod, 0, len(recs))
	for _, rec := range recs {
		methods = append(methods, toWireShipping(rec))
	}
	return c.JSON(methods)
}

func (s *Server) handleCreateOrder(c *fiber.Ctx) error {
	var req models.OrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cuerpo de la petición inválido"})
	}
	if len(req.Products) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "El pedido no tiene productos"})
	}

	var shipping shippingRecord
	if err := s.db.First(&shipping, "id = ?", req.ShippingMethod.ID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Método de envío inválido"})
	}

	// The whole creation runs in one transaction: stock decrements roll back
	// when any unit cannot be fulfilled.
	var created orderRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		total := shipping.Price
		var units []orderUnitRecord

		for _, ref := range req.Products {
			var product productRecord
			if err := tx.First(&product, "id = ?", ref.ID).Error; err != nil {
				return fmt.Errorf("Producto %d no encontrado", ref.ID)
			}
			if product.Stock < 1 {
				return fmt.Errorf("Stock insuficiente para %s", product.Name)
			}
			product.Stock--
			if err := tx.Save(&product).Error; err != nil {
				return fmt.Errorf("No se pudo actualizar el stock")
			}
			total += product.Price
			units = append(units, orderUnitRecord{
				ProductID:   product.ID,
				Name:        product.Name,
				Description: product.Description,
				Price:       product.Price,
			})
		}

		created = orderRecord{
			CustomerName:    req.CustomerName,
			CustomerAddress: req.CustomerAddress,
			ShippingID:      shipping.ID,
			Total:           total,
			Date:            time.Now().UTC(),
			Status:          models.OrderStatusPending,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("No se pudo crear el pedido")
		}
		for i := range units {
			units[i].OrderID = created.ID
		}
		if err := tx.Create(&units).Error; err != nil {
			return fmt.Errorf("No se pudo registrar el detalle del pedido")
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	order, err := s.toWireOrder(created)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "No se pudo leer el pedido creado"})
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (s *Server) handleListOrders(c *fiber.Ctx) error {
	var recs []orderRecord
	if err := s.db.Order("id").Find(&recs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "No se pudieron obtener los pedidos"})
	}
	orders := make([]models.Order, 0, len(recs))
	for _, rec := range recs {
		order, err := s.toWireOrder(rec)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "No se pudo leer un pedido"})
		}
		orders = append(orders, order)
	}
	return c.JSON(orders)
}

func (s *Server) handleGetOrder(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identificador inválido"})
	}
	var rec orderRecord
	if err := s.db.First(&rec, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Pedido no encontrado"})
	}
	order, err := s.toWireOrder(rec)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "No se pudo leer el pedido"})
	}
	return c.JSON(order)
}

func (s *Server) handleUpdateOrderStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Identificador inválido"})
	}

	// The body is the bare status string, possibly JSON-quoted.
	status := strings.Trim(strings.TrimSpace(string(c.Body())), `"`)
	if status != models.OrderStatusPending && status != models.OrderStatusDispatched {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": fmt.Sprintf("Estado inválido: %s", status)})
	}

	var rec orderRecord
	if err := s.db.First(&rec, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Pedido no encontrado"})
	}
	rec.Status = status
	if err := s.db.Save(&rec).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "No se pudo actualizar el estado"})
	}

	order, err := s.toWireOrder(rec)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "No se pudo leer el pedido"})
	}
	return c.JSON(order)
}

func toWireInvoice(rec invoiceRecord) models.Invoice {
	// Product rows are not denormalized onto stored invoices; clients
	// back-fill them from the originating order for display.
	return models.Invoice{
		ID:              rec.ID,
		Number:          rec.Number,
		IssuedAt:        rec.IssuedAt,
		CustomerName:    rec.CustomerName,
		CustomerAddress: rec.CustomerAddress,
		OrderID:         rec.OrderID,
		Net:             rec.Net,
		Tax:             rec.Tax,
		TotalPaid:       rec.TotalPaid,
	}
}

func (s *Server) handleListInvoices(c *fiber.Ctx) error {
	var recs []invoiceRecord
	if err := s.db.Order("id").Find(&recs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "No se pudieron obtener las facturas"})
	}
	invoices := make([]models.Invoice, 0, len(recs))
	for _, rec := range recs {
		invoices = append(invoices, toWireInvoice(rec))
	}
	return c.JSON(invoices)
}

func (s *Server) handleGenerateInvoice(c *fiber.Ctx) error {
	var req struct {
		ID int `json:"id"`
	}
	if err := c.BodyParser(&req); err != nil || req.ID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Se requiere el pedido a facturar"})
	}

	var order orderRecord
	if err := s.db.First(&order, "id = ?", req.ID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Pedido no encontrado"})
	}

	// Generation is idempotent per order: a repeated request returns the
	// invoice created the first time.
	var existing invoiceRecord
	if err := s.db.First(&existing, "order_id = ?", order.ID).Error; err == nil {
		return c.JSON(toWireInvoice(existing))
	}

	net := math.Round(order.Total / 1.19)
	rec := invoiceRecord{
		IssuedAt:        time.Now().UTC(),
		CustomerName:    order.CustomerName,
		CustomerAddress: order.CustomerAddress,
		OrderID:         order.ID,
		Net:             net,
		Tax:             order.Total - net,
		TotalPaid:       order.Total,
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "No se pudo generar la factura"})
	}
	rec.Number = fmt.Sprintf("F-%06d", rec.ID)
	if err := s.db.Save(&rec).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "No se pudo numerar la factura"})
	}

	return c.Status(fiber.StatusCreated).JSON(toWireInvoice(rec))
}
