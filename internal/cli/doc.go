// Package cli provides the terminal user interface of VetLink.
//
// The package uses [Bubbletea] for building interactive terminal UIs and
// [Lipgloss] for styling. All UI components follow the standard Bubbletea
// Model-View-Update (MVU) architecture.
//
// # Components
//
//   - AppModel: header with the collapsible navigation menu, home menu and
//     page routing
//   - PetListModel: paginated, searchable, sortable pet records table
//   - PetFormModel: pet registration form
//   - NotFoundModel: page shown for routes that have no screen yet
//
// RenderPetTable and RenderOwnerTable render the same rows for
// non-interactive output.
//
// # Requests
//
// PetListModel never fetches from Update. Query changes go through a
// [listing.Controller], which returns a sequenced request; the model runs
// it as a tea.Cmd under its own context and hands the response back to the
// controller, which drops anything stale.
//
// [Bubbletea]: https://github.com/charmbracelet/bubbletea
// [Lipgloss]: https://github.com/charmbracelet/lipgloss
package cli
