package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"gitlab.com/ravilima/diane/internal/models"
	"gitlab.com/ravilima/diane/internal/repository"
)

type createListRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type updateListRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type addItemsRequest struct {
	Items []string `json:"items" validate:"required,min=1,dive,min=1"`
}

type checkItemsRequest struct {
	ItemNames []string `json:"item_names" validate:"required,min=1,dive,min=1"`
}

type updateItemRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

func (s *Server) listShoppingLists(c *fiber.Ctx) error {
	lists, err := s.shopping.GetAll(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]ShoppingListDTO, len(lists))
	for i := range lists {
		out[i] = toShoppingListDTO(&lists[i])
	}
	return c.JSON(out)
}

func (s *Server) createShoppingList(c *fiber.Ctx) error {
	var req createListRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	// Deactivate-then-create must land as one unit so no moment exists with
	// zero or two active lists.
	var list *models.ShoppingList
	err := s.withTx(c.Context(), func(tx pgx.Tx) error {
		var err error
		list, err = repository.NewShoppingRepository(tx).CreateActive(c.Context(), req.Name)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toShoppingListDTO(list))
}

func (s *Server) getShoppingList(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	list, err := s.shopping.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toShoppingListDTO(list))
}

func (s *Server) updateShoppingList(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req updateListRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := s.shopping.UpdateList(c.Context(), id, req.Name); err != nil {
		return respondError(c, err)
	}
	list, err := s.shopping.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toShoppingListDTO(list))
}

func (s *Server) deleteShoppingList(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := s.shopping.DeleteList(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) activateShoppingList(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	// In one transaction: activating a missing list must not deactivate the
	// current one.
	err = s.withTx(c.Context(), func(tx pgx.Tx) error {
		return repository.NewShoppingRepository(tx).SetActive(c.Context(), id)
	})
	if err != nil {
		return respondError(c, err)
	}
	list, err := s.shopping.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toShoppingListDTO(list))
}

func (s *Server) addShoppingItems(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req addItemsRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	added, err := s.shopping.AddItems(c.Context(), id, req.Items)
	if err != nil {
		return respondError(c, err)
	}
	list, err := s.shopping.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"added": added, "list": toShoppingListDTO(list)})
}

func (s *Server) checkShoppingItems(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req checkItemsRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	checked, unmatched, err := s.shopping.CheckItemsByNames(c.Context(), id, req.ItemNames)
	if err != nil {
		return respondError(c, err)
	}
	list, err := s.shopping.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"checked":   checked,
		"unmatched": unmatched,
		"list":      toShoppingListDTO(list),
	})
}

func (s *Server) toggleShoppingItem(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	itemID, err := idParam(c, "itemID")
	if err != nil {
		return respondError(c, err)
	}

	checked, err := s.shopping.ToggleItem(c.Context(), id, itemID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"checked": checked})
}

func (s *Server) updateShoppingItem(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	itemID, err := idParam(c, "itemID")
	if err != nil {
		return respondError(c, err)
	}
	var req updateItemRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := s.shopping.UpdateItem(c.Context(), id, itemID, req.Name); err != nil {
		return respondError(c, err)
	}
	list, err := s.shopping.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toShoppingListDTO(list))
}

func (s *Server) deleteShoppingItem(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	itemID, err := idParam(c, "itemID")
	if err != nil {
		return respondError(c, err)
	}
	if err := s.shopping.DeleteItem(c.Context(), id, itemID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
