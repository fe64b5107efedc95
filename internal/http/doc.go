// Package http exposes the timetable generator and editor over JSON.
//
// Identity is asserted by the upstream gateway through the X-User-ID and
// X-User-Role headers; every route except /healthz and /metrics rejects
// requests without them. The router exposes:
//   - GET /templates/defaults: the values that prefill the template form.
//   - POST /templates/generate: builds a week from the template form and returns
//     the days, the nine-slot display grid of each day, and any warnings.
//     Nothing is stored.
//   - GET /timetables, POST /timetables: list stored timetables (filters
//     classId, sectionId, academicYear, status) and save a week for a class
//     section. Saving over an existing timetable needs "overwrite": true and
//     answers 200 with "replaced": true; a new timetable answers 201.
//   - GET /timetables/{id}, DELETE /timetables/{id}, GET /timetables/{id}/grid,
//     GET /timetables/{id}/export: read, delete, grid view and xlsx download.
//   - GET /timetables/{id}/conflicts: teachers also booked at overlapping
//     times by another class in the same academic year (staff only).
//   - POST /timetables/{id}/publish, POST /timetables/{id}/unpublish.
//   - POST /timetables/{id}/days/{day}/periods and
//     PUT|DELETE /timetables/{id}/days/{day}/periods/{periodId}: the period editor.
//   - GET /preferences/selection, PUT /preferences/selection: the class section
//     the caller last opened.
//
// Slot collisions answer 409 with the two competing periods so the editor can
// show which column is taken. Drafts are visible to admins and teachers only.
package http
