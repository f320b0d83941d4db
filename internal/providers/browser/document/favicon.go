package document

import (
	"errors"

	"golang.org/x/net/html/atom"
)

// SetFavicon points the page icon at path, reusing an existing icon link
func (d *Document) SetFavicon(path string) error {
	if path == "" {
		return errors.New("favicon path required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	link := d.first("link[rel*='icon']")
	if link == nil {
		link = element(atom.Link)
	}

	setAttr(link, "type", "image/x-icon")
	setAttr(link, "rel", "shortcut icon")
	setAttr(link, "href", path)

	if link.Parent != nil {
		link.Parent.RemoveChild(link)
	}
	d.head.AppendChild(link)
	return nil
}
