// Package marker defines the attribute and meta-tag vocabulary a page uses
// to opt in to soft navigation and to tune how individual elements are
// treated across a swap.
package marker

const (
	// Meta is the opt-in meta tag name. Soft navigation only engages when
	// <meta name="softnav" content="active"> is present in the head of both
	// the departing and the arriving document.
	Meta = "softnav"

	// MetaActive is the opt-in meta tag content value.
	MetaActive = "active"

	// Opt disables interception for an element and its subtree when set to
	// "false" (data-softnav="false").
	Opt = "data-softnav"

	// Permanent flags an element carrying an id as persistent: the live
	// element is moved into the new document in place of its same-id
	// placeholder, never cloned.
	Permanent = "data-softnav-permanent"

	// History selects the history kind for a trigger element; the value
	// "replace" overwrites the current entry instead of pushing.
	History = "data-softnav-history"

	// HistoryReplace is the replace value for the History marker.
	HistoryReplace = "replace"

	// Track flags a head asset whose identity is compared between the old
	// and new document; any mismatch forces a full reload.
	Track = "data-softnav-track"

	// ScrollMeta is the scroll-policy meta tag name. With content
	// "preserve", a same-pathname replace navigation keeps the current
	// scroll position.
	ScrollMeta = "softnav-scroll"

	// ScrollPreserve is the preserve value for ScrollMeta.
	ScrollPreserve = "preserve"

	// Direction is the transient navigation-direction attribute set on the
	// root element for the duration of a transition ("forward" or "back").
	Direction = "data-softnav-direction"

	// Visit carries the attempt identifier on the trigger element while its
	// navigation is in flight.
	Visit = "data-softnav-visit"
)
