// Package gate intercepts form submission.
//
// Three gates listen for submit events on a page's forms:
//
//   - Submission binds every form. It runs the field validator, suppresses
//     invalid submissions with a danger notification, and puts the submit
//     button in a busy state when the submission goes through.
//   - Toggle binds forms whose action contains "/toggle". It shows a spinner
//     on the button and submits natively after a short delay.
//   - Confirm binds forms whose action contains "/delete". It asks a
//     confirm.Confirmer and submits only on accept.
//
// A form can be bound by several gates. Listeners run in binding order, and
// Toggle and Confirm stand down when an earlier gate already rejected the
// event, so a single user submit produces at most one native submission.
// The busy state is entered from a default-action hook, so an event that a
// later gate suppresses leaves the page untouched.
//
// Set wires all three to a page and can rescan for forms added later:
//
//	set := gate.NewSet(doc, loop, gate.Config{
//	    Validator: form.NewFieldValidator(form.DefaultMessages()),
//	    Notifier:  notifications,
//	    Confirmer: confirm.NewModal(doc),
//	})
//	set.Scan()
package gate
