// Package mall holds the read-only shop and parking directories.
package mall

import "strings"

type Shop struct {
	Name        string `json:"name"`
	Floor       string `json:"floor"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// Directory is immutable after construction. Shop order decides which shop
// wins when a query matches more than one name.
type Directory struct {
	shops   []Shop
	parking map[string]string
}

func NewDirectory(shops []Shop, parking map[string]string) *Directory {
	d := &Directory{
		shops:   append([]Shop(nil), shops...),
		parking: make(map[string]string, len(parking)),
	}
	for plate, spot := range parking {
		d.parking[plate] = spot
	}
	return d
}

// FindShop returns the first shop whose name contains query, ignoring case.
func (d *Directory) FindShop(query string) (Shop, bool) {
	needle := strings.ToLower(query)
	for _, shop := range d.shops {
		if strings.Contains(strings.ToLower(shop.Name), needle) {
			return shop, true
		}
	}
	return Shop{}, false
}

// FindParking is an exact lookup. Plates are not normalized.
func (d *Directory) FindParking(plate string) (string, bool) {
	spot, ok := d.parking[plate]
	return spot, ok
}

func (d *Directory) Shops() []Shop {
	return append([]Shop(nil), d.shops...)
}
