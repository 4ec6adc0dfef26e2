// Package selection tracks the human confirmation step between automatic
// processing and export.
//
// Every successfully processed image starts Proposed with the automatic
// template choice. Choose records an override (index 0 re-selects the
// automatic choice explicitly) and moves the image to Confirmed. ConfirmAll
// finalizes the whole batch; after that the batch is read-only.
package selection
